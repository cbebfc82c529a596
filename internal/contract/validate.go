package contract

import "errors"

// Validator turns a raw screening payload into a canonical ScreeningResult.
// Validation is idempotent and side-effect free.
type Validator struct {
	registry *Registry
	strict   bool
}

// NewValidator creates a validator backed by the given registry. When strict
// is true, fields with no alias or canonical match fail normalisation.
func NewValidator(registry *Registry, strict bool) *Validator {
	return &Validator{registry: registry, strict: strict}
}

// Validate resolves the payload's schema version (falling back to the
// registry default), normalises alias field names, and structurally validates
// the result. The returned alias list records which rewrites fired.
func (v *Validator) Validate(raw map[string]any) (*ScreeningResult, []AppliedAlias, error) {
	version := v.registry.DefaultVersion()
	if declared, ok := raw["schema_version"]; ok {
		s, isStr := declared.(string)
		if !isStr {
			return nil, nil, &ValidationError{
				Version:    version,
				Violations: []FieldViolation{{Field: "schema_version", Reason: "must be a string"}},
			}
		}
		version = s
	}

	aliasMap, err := v.registry.AliasMap(version)
	if err != nil {
		return nil, nil, err
	}

	normalized, applied, err := Normalise(raw, aliasMap, v.strict)
	if err != nil {
		var ufe *UnknownFieldError
		if errors.As(err, &ufe) {
			ufe.Version = version
		}
		return nil, nil, err
	}

	schema, err := v.registry.ScreeningSchema(version)
	if err != nil {
		return nil, nil, err
	}

	if violations := schema.Check(normalized); len(violations) > 0 {
		return nil, nil, &ValidationError{Version: version, Violations: violations}
	}

	return decodeScreening(version, normalized), applied, nil
}

// decodeScreening maps an already-validated payload onto the canonical
// struct. Input order of rule_codes is preserved.
func decodeScreening(version string, payload map[string]any) *ScreeningResult {
	result := &ScreeningResult{SchemaVersion: version}

	if s, ok := payload["decision"].(string); ok {
		result.Decision = Decision(s)
	}
	if amount, ok := toFloat(payload["amount"]); ok {
		result.Amount = amount
	}
	if items, ok := toAnySlice(payload["rule_codes"]); ok {
		result.RuleCodes = make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				result.RuleCodes = append(result.RuleCodes, s)
			}
		}
	}
	if corridor, ok := payload["corridor"].(map[string]any); ok {
		result.Corridor.OriginCountry, _ = corridor["origin_country"].(string)
		result.Corridor.DestinationCountry, _ = corridor["destination_country"].(string)
		result.Corridor.Channel, _ = corridor["channel"].(string)
		result.Corridor.Currency, _ = corridor["currency"].(string)
	}
	return result
}
