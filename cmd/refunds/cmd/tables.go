package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/Togather-Foundation/refunds/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newTablesCommand(app *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print the effective policy tables",
		Long: `Print the policy in effect: canonical time zone, policy cutoff, business
hours, customer locations and time limits. The document is checked before it
is printed, so this also validates a policy file passed with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := config.LoadPolicyDocument(app.cfg.PolicyFile)
			if err != nil {
				return err
			}
			if _, err := doc.Build(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(doc); err != nil {
					return fmt.Errorf("encode policy: %w", err)
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			default:
				return fmt.Errorf("unsupported format %q (must be 'yaml' or 'json')", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "output format (yaml, json)")
	return cmd
}
