package nodes

import (
	"fmt"
	"strings"
)

// Params holds the parameters of a node definition, as decoded from YAML.
type Params map[string]any

// String returns a required string parameter.
func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", fmt.Errorf("missing parameter %q", key)
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string, got %v", key, v)
	}
	return s, nil
}

// StringOr returns an optional string parameter.
func (p Params) StringOr(key, fallback string) (string, error) {
	if v, ok := p[key]; !ok || v == nil {
		return fallback, nil
	}
	return p.String(key)
}

// Strings returns a required list of strings. A single string is accepted
// as a one-element list.
func (p Params) Strings(key string) ([]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("missing parameter %q", key)
	}
	var out []string
	switch list := v.(type) {
	case string:
		out = []string{list}
	case []string:
		out = append(out, list...)
	case []any:
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("parameter %q: %v is not a string", key, item)
			}
			out = append(out, s)
		}
	default:
		return nil, fmt.Errorf("parameter %q must be a list of strings, got %T", key, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("parameter %q is empty", key)
	}
	return out, nil
}

// Fields returns the "fields" list, or the single "field" parameter when
// "fields" is absent.
func (p Params) Fields() ([]string, error) {
	if _, ok := p["fields"]; ok {
		return p.Strings("fields")
	}
	f, err := p.String("field")
	if err != nil {
		return nil, err
	}
	return []string{f}, nil
}
