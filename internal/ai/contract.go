package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"google.golang.org/genai"
)

// ErrContractViolation is returned when an oracle response does not satisfy
// the schema it was requested with.
var ErrContractViolation = errors.New("oracle response violates contract")

// Contract is a named structured-output schema. The schema is sent to the
// oracle and the same schema is used to validate what comes back.
type Contract struct {
	Name   string
	Schema *genai.Schema
}

// Decode validates raw against the contract schema and decodes it into out.
// Markdown code fences around the JSON payload are tolerated.
func (c *Contract) Decode(raw string, out any) error {
	cleaned := ExtractJSON(raw)
	if cleaned == "" {
		return c.violation("", "empty response")
	}

	var data any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return c.violation("", fmt.Sprintf("invalid json: %s", err))
	}

	if err := c.validate(c.Schema, data, ""); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return fmt.Errorf("create %s decoder: %w", c.Name, err)
	}

	if err := decoder.Decode(data); err != nil {
		return c.violation("", err.Error())
	}

	return nil
}

func (c *Contract) validate(schema *genai.Schema, value any, path string) error {
	if schema == nil {
		return nil
	}

	if value == nil {
		if schema.Nullable != nil && *schema.Nullable {
			return nil
		}
		return c.violation(path, "is null")
	}

	switch schema.Type {
	case genai.TypeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return c.violation(path, "expected object")
		}
		for _, key := range schema.Required {
			if v, ok := obj[key]; !ok || v == nil {
				return c.violation(joinPath(path, key), "missing required field")
			}
		}
		for _, key := range slices.Sorted(maps.Keys(schema.Properties)) {
			v, ok := obj[key]
			if !ok || (v == nil && !slices.Contains(schema.Required, key)) {
				continue
			}
			if err := c.validate(schema.Properties[key], v, joinPath(path, key)); err != nil {
				return err
			}
		}
	case genai.TypeArray:
		items, ok := value.([]any)
		if !ok {
			return c.violation(path, "expected array")
		}
		for i, item := range items {
			if err := c.validate(schema.Items, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case genai.TypeString:
		s, ok := value.(string)
		if !ok {
			return c.violation(path, "expected string")
		}
		if schema.MinLength != nil && int64(utf8.RuneCountInString(strings.TrimSpace(s))) < *schema.MinLength {
			return c.violation(path, fmt.Sprintf("shorter than %d characters", *schema.MinLength))
		}
	case genai.TypeInteger:
		n, ok := value.(float64)
		if !ok || n != math.Trunc(n) {
			return c.violation(path, "expected integer")
		}
		return c.checkBounds(schema, n, path)
	case genai.TypeNumber:
		n, ok := value.(float64)
		if !ok {
			return c.violation(path, "expected number")
		}
		return c.checkBounds(schema, n, path)
	case genai.TypeBoolean:
		if _, ok := value.(bool); !ok {
			return c.violation(path, "expected boolean")
		}
	}

	return nil
}

func (c *Contract) checkBounds(schema *genai.Schema, n float64, path string) error {
	if schema.Minimum != nil && n < *schema.Minimum {
		return c.violation(path, fmt.Sprintf("%v is below minimum %v", n, *schema.Minimum))
	}
	if schema.Maximum != nil && n > *schema.Maximum {
		return c.violation(path, fmt.Sprintf("%v is above maximum %v", n, *schema.Maximum))
	}
	return nil
}

func (c *Contract) violation(path, reason string) error {
	if path == "" {
		return fmt.Errorf("%w: %s: %s", ErrContractViolation, c.Name, reason)
	}
	return fmt.Errorf("%w: %s: %s %s", ErrContractViolation, c.Name, path, reason)
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// ExtractJSON strips surrounding markdown code fences from a model response.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
