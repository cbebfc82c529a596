package contract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// FieldSpec declares the constraints on a single canonical field.
type FieldSpec struct {
	Type        string               `json:"type"` // string, number, array, object
	Required    bool                 `json:"required"`
	Enum        []string             `json:"enum,omitempty"`
	Minimum     *float64             `json:"minimum,omitempty"`
	Pattern     string               `json:"pattern,omitempty"`
	ItemPattern string               `json:"item_pattern,omitempty"` // for array items
	Fields      map[string]FieldSpec `json:"fields,omitempty"`       // for object
}

// SchemaDoc is a parsed screening schema document for one version.
type SchemaDoc struct {
	Version string               `json:"version"`
	Fields  map[string]FieldSpec `json:"fields"`

	patterns map[string]*regexp.Regexp
}

// parseSchemaDoc decodes and compiles a schema document. Pattern compilation
// happens here so a bad deployment artifact fails at load, not per request.
func parseSchemaDoc(raw []byte) (*SchemaDoc, error) {
	var doc SchemaDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse schema document: %w", err)
	}
	doc.patterns = make(map[string]*regexp.Regexp)
	if err := doc.compile("", doc.Fields); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *SchemaDoc) compile(prefix string, fields map[string]FieldSpec) error {
	for name, spec := range fields {
		path := joinPath(prefix, name)
		if spec.Pattern != "" {
			re, err := regexp.Compile(spec.Pattern)
			if err != nil {
				return fmt.Errorf("schema %s: field %s: bad pattern %q: %w", d.Version, path, spec.Pattern, err)
			}
			d.patterns[path] = re
		}
		if spec.ItemPattern != "" {
			re, err := regexp.Compile(spec.ItemPattern)
			if err != nil {
				return fmt.Errorf("schema %s: field %s: bad item pattern %q: %w", d.Version, path, spec.ItemPattern, err)
			}
			d.patterns[path+"[]"] = re
		}
		if len(spec.Fields) > 0 {
			if err := d.compile(path, spec.Fields); err != nil {
				return err
			}
		}
	}
	return nil
}

// Check structurally validates a normalised payload against the schema and
// returns every violation found.
func (d *SchemaDoc) Check(payload map[string]any) []FieldViolation {
	return d.checkFields("", d.Fields, payload)
}

func (d *SchemaDoc) checkFields(prefix string, fields map[string]FieldSpec, payload map[string]any) []FieldViolation {
	var out []FieldViolation

	// Walk in stable order so violation lists are deterministic.
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := fields[name]
		path := joinPath(prefix, name)

		value, present := payload[name]
		if !present || value == nil {
			if spec.Required {
				out = append(out, FieldViolation{Field: path, Reason: "required field is missing"})
			}
			continue
		}
		out = append(out, d.checkValue(path, spec, value)...)
	}
	return out
}

func (d *SchemaDoc) checkValue(path string, spec FieldSpec, value any) []FieldViolation {
	switch spec.Type {
	case "string":
		s, ok := value.(string)
		if !ok {
			return []FieldViolation{{Field: path, Reason: "must be a string"}}
		}
		if len(spec.Enum) > 0 && !contains(spec.Enum, s) {
			return []FieldViolation{{Field: path, Reason: fmt.Sprintf("must be one of %s", strings.Join(spec.Enum, ", "))}}
		}
		if re, ok := d.patterns[path]; ok && !re.MatchString(s) {
			return []FieldViolation{{Field: path, Reason: fmt.Sprintf("must match %s", re.String())}}
		}

	case "number":
		n, ok := toFloat(value)
		if !ok {
			return []FieldViolation{{Field: path, Reason: "must be a number"}}
		}
		if spec.Minimum != nil && n < *spec.Minimum {
			return []FieldViolation{{Field: path, Reason: fmt.Sprintf("must be >= %v", *spec.Minimum)}}
		}

	case "array":
		items, ok := toAnySlice(value)
		if !ok {
			return []FieldViolation{{Field: path, Reason: "must be an array"}}
		}
		var out []FieldViolation
		re := d.patterns[path+"[]"]
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				out = append(out, FieldViolation{Field: fmt.Sprintf("%s[%d]", path, i), Reason: "must be a string"})
				continue
			}
			if re != nil && !re.MatchString(s) {
				out = append(out, FieldViolation{Field: fmt.Sprintf("%s[%d]", path, i), Reason: fmt.Sprintf("must match %s", re.String())})
			}
		}
		return out

	case "object":
		obj, ok := value.(map[string]any)
		if !ok {
			return []FieldViolation{{Field: path, Reason: "must be an object"}}
		}
		return d.checkFields(path, spec.Fields, obj)
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// toFloat accepts the numeric types seen from json decoding and from
// payloads constructed in code.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// toAnySlice accepts []any from json decoding and []string from code.
func toAnySlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	}
	return nil, false
}
