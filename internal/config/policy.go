package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Togather-Foundation/refunds/internal/domain/refunds"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/policy.yaml
var defaultPolicyYAML []byte

// PolicyDocument is the on-disk form of the refund policy tables.
type PolicyDocument struct {
	CanonicalTimezone string                      `yaml:"canonical_timezone" json:"canonical_timezone"`
	PolicyCutoff      string                      `yaml:"policy_cutoff" json:"policy_cutoff"`
	BusinessHours     BusinessHoursDocument       `yaml:"business_hours" json:"business_hours"`
	Locations         map[string]LocationDocument `yaml:"locations" json:"locations"`
	TimeLimits        map[string]map[string]int   `yaml:"time_limits" json:"time_limits"`
}

type BusinessHoursDocument struct {
	Opening *int     `yaml:"opening,omitempty" json:"opening,omitempty"`
	Closing *int     `yaml:"closing,omitempty" json:"closing,omitempty"`
	Weekend []string `yaml:"weekend,omitempty" json:"weekend,omitempty"`
}

type LocationDocument struct {
	Timezone   string `yaml:"timezone" json:"timezone"`
	DateFormat string `yaml:"date_format" json:"date_format"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultPolicyDocument returns the embedded policy tables.
func DefaultPolicyDocument() (PolicyDocument, error) {
	return ParsePolicyDocument(defaultPolicyYAML)
}

// LoadPolicyDocument reads a policy document from path, or the embedded
// defaults when path is empty.
func LoadPolicyDocument(path string) (PolicyDocument, error) {
	if path == "" {
		return DefaultPolicyDocument()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return PolicyDocument{}, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicyDocument(data)
}

// ParsePolicyDocument decodes YAML, rejecting unknown keys.
func ParsePolicyDocument(data []byte) (PolicyDocument, error) {
	var doc PolicyDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return PolicyDocument{}, fmt.Errorf("parse policy: %w", err)
	}
	return doc, nil
}

// LoadPolicy reads and builds the policy at path (embedded defaults when
// empty).
func LoadPolicy(path string) (refunds.Policy, error) {
	doc, err := LoadPolicyDocument(path)
	if err != nil {
		return refunds.Policy{}, err
	}
	return doc.Build()
}

// Build resolves zones and layouts and checks the resulting policy. Every
// problem found is reported, not just the first.
func (d PolicyDocument) Build() (refunds.Policy, error) {
	var errs []string

	var canonical *time.Location
	if strings.TrimSpace(d.CanonicalTimezone) == "" {
		errs = append(errs, "canonical_timezone: required")
	} else if loc, err := time.LoadLocation(d.CanonicalTimezone); err != nil {
		errs = append(errs, fmt.Sprintf("canonical_timezone: unknown zone %q", d.CanonicalTimezone))
	} else {
		canonical = loc
	}

	var cutoff time.Time
	if strings.TrimSpace(d.PolicyCutoff) == "" {
		errs = append(errs, "policy_cutoff: required")
	} else if parsed, err := refunds.ParseCutoff(d.PolicyCutoff); err != nil {
		errs = append(errs, fmt.Sprintf("policy_cutoff: must be DD/MM/YYYY, got %q", d.PolicyCutoff))
	} else {
		cutoff = parsed
	}

	if len(d.Locations) == 0 {
		errs = append(errs, "locations: at least one location is required")
	}
	locations := make(refunds.TimeZoneMapping, len(d.Locations))
	for _, name := range sortedKeys(d.Locations) {
		entry := d.Locations[name]
		loc, err := refunds.NewLocation(name, entry.Timezone, entry.DateFormat, entry.TimeFormat)
		if err != nil {
			errs = append(errs, "locations: "+err.Error())
			continue
		}
		locations[name] = loc
	}

	limits := refunds.TimeLimitTable{}
	for _, rawChannel := range sortedKeys(d.TimeLimits) {
		channel, ok := refunds.ParseChannel(rawChannel)
		if !ok {
			errs = append(errs, fmt.Sprintf("time_limits: unknown channel %q", rawChannel))
			continue
		}
		byPolicy := d.TimeLimits[rawChannel]
		for _, rawTag := range sortedKeys(byPolicy) {
			tag, ok := refunds.ParsePolicyTag(rawTag)
			if !ok {
				errs = append(errs, fmt.Sprintf("time_limits.%s: unknown policy %q", rawChannel, rawTag))
				continue
			}
			limits.Set(channel, tag, byPolicy[rawTag])
		}
	}

	hours, err := d.BusinessHours.build()
	if err != nil {
		errs = append(errs, "business_hours: "+err.Error())
	}

	if len(errs) > 0 {
		return refunds.Policy{}, errors.New("invalid policy: " + strings.Join(errs, "; "))
	}

	policy := refunds.Policy{
		Canonical:     canonical,
		Cutoff:        cutoff,
		Locations:     locations,
		TimeLimits:    limits,
		BusinessHours: hours,
	}
	if err := policy.Check(); err != nil {
		return refunds.Policy{}, fmt.Errorf("invalid policy: %w", err)
	}
	return policy, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func (b BusinessHoursDocument) build() (refunds.BusinessHours, error) {
	hours := refunds.DefaultBusinessHours()
	if b.Opening != nil {
		hours.Opening = *b.Opening
	}
	if b.Closing != nil {
		hours.Closing = *b.Closing
	}
	if b.Weekend != nil {
		hours.Weekend = make([]time.Weekday, 0, len(b.Weekend))
		for _, name := range b.Weekend {
			day, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				return refunds.BusinessHours{}, fmt.Errorf("unknown weekday %q", name)
			}
			hours.Weekend = append(hours.Weekend, day)
		}
	}
	return hours, hours.Check()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
