package refunds

import (
	"bytes"
	"fmt"

	"sigs.k8s.io/yaml"
)

type requestDocument struct {
	Requests []RawRequest `json:"requests"`
}

// DecodeRequests reads a JSON or YAML document holding either a bare list of
// requests or an object with a "requests" list. Field names follow the JSON
// tags on RawRequest.
func DecodeRequests(data []byte) ([]RawRequest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode requests: empty document")
	}

	var list []RawRequest
	if err := yaml.Unmarshal(trimmed, &list); err == nil {
		return list, nil
	}

	var doc requestDocument
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}
	if doc.Requests == nil {
		return nil, fmt.Errorf("decode requests: expected a list or {\"requests\": [...]}")
	}
	return doc.Requests, nil
}
