package app

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"circuit_travel/internal/domain"
)

// FlexStrings is the single normalization boundary for list-like request
// fields. The clients send tags either as a JSON array of strings, as one
// comma-separated string, or omit the field; anything else is a validation
// error, never a silent empty list.
type FlexStrings []string

func (f *FlexStrings) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: invalid list field", domain.ErrValidation)
	}
	out, err := toStringList(raw)
	if err != nil {
		return err
	}
	*f = out
	return nil
}

func toStringList(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		var out []string
		for _, p := range strings.Split(v, ",") {
			if t := strings.TrimSpace(p); t != "" {
				out = append(out, t)
			}
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%w: list field must contain strings only", domain.ErrValidation)
			}
			if t := strings.TrimSpace(s); t != "" {
				out = append(out, t)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: list field must be an array or comma-separated string", domain.ErrValidation)
	}
}

// FlexNumberMap accepts a JSON object of string keys to numbers (numbers
// sent as strings are coerced). Used for per-experience distances.
type FlexNumberMap map[string]float64

func (f *FlexNumberMap) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: field must be an object of numbers", domain.ErrValidation)
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		switch n := v.(type) {
		case float64:
			out[k] = n
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", domain.ErrValidation, n)
			}
			out[k] = parsed
		default:
			return fmt.Errorf("%w: field must map names to numbers", domain.ErrValidation)
		}
	}
	*f = out
	return nil
}

var wsRun = regexp.MustCompile(`\s+`)

// NormalizeLabel lowercases, trims and underscore-joins one matching label.
// Applied once at write time; queries normalize before comparing so the two
// sides always meet in the same form.
func NormalizeLabel(s string) string {
	return wsRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_")
}

// NormalizeLabels maps NormalizeLabel over a list, dropping empties.
func NormalizeLabels(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := NormalizeLabel(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
