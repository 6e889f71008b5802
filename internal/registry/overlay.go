package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/0xKimutai/IDSnap/constants"
)

// overlaySchema constrains external registry files. Draft 2020-12 subset;
// compiled once per load so schema errors surface with the file, not at init.
const overlaySchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["patterns", "formats"],
  "properties": {
    "patterns": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "required": ["validation", "baseConfidence"],
        "properties": {
          "validation": {"type": "string", "minLength": 1},
          "extraction": {"type": "string"},
          "baseConfidence": {"type": "number", "exclusiveMinimum": 0, "maximum": 1}
        }
      }
    },
    "formats": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["name", "fields"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "keywords": {"type": "array", "items": {"type": "string", "minLength": 1}},
          "fields": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "additionalProperties": false,
              "required": ["key", "label"],
              "properties": {
                "key": {"type": "string", "minLength": 1},
                "label": {"type": "string", "minLength": 1},
                "required": {"type": "boolean"}
              }
            }
          }
        }
      }
    }
  }
}`

type overlayPattern struct {
	Validation     string  `json:"validation"`
	Extraction     string  `json:"extraction"`
	BaseConfidence float64 `json:"baseConfidence"`
}

type overlayField struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

type overlayFormat struct {
	Name     string         `json:"name"`
	Keywords []string       `json:"keywords"`
	Fields   []overlayField `json:"fields"`
}

type overlayFile struct {
	Patterns map[string]overlayPattern `json:"patterns"`
	Formats  []overlayFormat           `json:"formats"`
}

// LoadOverlay builds a registry from an external JSON table, validating it
// against the overlay schema first. Formats are listed in detection-priority
// order; a format named GENERIC becomes the fallback and must be present.
func LoadOverlay(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry overlay: %w", err)
	}
	return ParseOverlay(data)
}

// ParseOverlay is LoadOverlay for in-memory data.
func ParseOverlay(data []byte) (*Registry, error) {
	if err := validateOverlay(data); err != nil {
		return nil, err
	}

	var of overlayFile
	if err := json.Unmarshal(data, &of); err != nil {
		return nil, fmt.Errorf("decode registry overlay: %w", err)
	}

	r := &Registry{
		patterns: make(map[string]FieldPattern, len(of.Patterns)),
		formats:  make(map[constants.FormatName]DocumentFormat, len(of.Formats)),
		keywords: make(map[constants.FormatName][]string),
	}

	for key, op := range of.Patterns {
		val, err := regexp.Compile(op.Validation)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: validation regex: %w", key, err)
		}
		var ext *regexp.Regexp
		if op.Extraction != "" {
			if ext, err = regexp.Compile(op.Extraction); err != nil {
				return nil, fmt.Errorf("pattern %q: extraction regex: %w", key, err)
			}
		}
		r.patterns[key] = FieldPattern{Validation: val, Extraction: ext, BaseConfidence: op.BaseConfidence}
	}

	for _, f := range of.Formats {
		name := constants.FormatName(f.Name)
		if _, dup := r.formats[name]; dup {
			return nil, fmt.Errorf("duplicate format %q", f.Name)
		}
		df := DocumentFormat{Name: name}
		for _, fld := range f.Fields {
			p, ok := r.patterns[fld.Key]
			if !ok {
				return nil, fmt.Errorf("format %q references unknown pattern %q", f.Name, fld.Key)
			}
			df.Fields = append(df.Fields, FieldSpec{
				Key: fld.Key, Label: fld.Label, Required: fld.Required, Pattern: p,
			})
		}
		r.formats[name] = df
		if name != constants.FormatGeneric {
			r.keywords[name] = append([]string(nil), f.Keywords...)
			r.order = append(r.order, name)
		}
	}

	if _, ok := r.formats[constants.FormatGeneric]; !ok {
		return nil, fmt.Errorf("overlay must define the %s fallback format", constants.FormatGeneric)
	}
	return r, nil
}

// validateOverlay validates raw overlay bytes against overlaySchema.
func validateOverlay(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("overlay.json", bytes.NewReader([]byte(overlaySchema))); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("overlay.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("registry overlay is not valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("registry overlay does not match schema: %w", err)
	}
	return nil
}
