package contract

import (
	"sort"
	"strings"
)

// AppliedAlias records a single alias rewrite that fired during
// normalisation, kept for diagnostics.
type AppliedAlias struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Normalise rewrites an arbitrary-shaped payload into the canonical field
// names of its schema version. Alias keys (including nested keys one level
// deep) are renamed; unknown keys pass through when strict is false and fail
// with UnknownFieldError when strict is true. If both an alias and its
// canonical key are present the canonical value wins. Output depends only on
// (payload, alias map, strict); the input map is never mutated.
func Normalise(payload map[string]any, am *AliasMap, strict bool) (map[string]any, []AppliedAlias, error) {
	out := make(map[string]any, len(payload))
	var applied []AppliedAlias
	var unknown []string

	for _, key := range sortedKeys(payload) {
		value := payload[key]
		target := key

		if canon, ok := am.Aliases[key]; ok {
			if _, dup := payload[canon]; dup {
				// canonical key present in the input wins
				continue
			}
			target = canon
			applied = append(applied, AppliedAlias{From: key, To: canon})
		} else if !am.IsCanonical(key) {
			if strict {
				unknown = append(unknown, key)
				continue
			}
			out[key] = value
			continue
		}

		if obj, isObj := value.(map[string]any); isObj {
			child, childApplied, childUnknown := normaliseObject(target, obj, am, strict)
			out[target] = child
			applied = append(applied, childApplied...)
			unknown = append(unknown, childUnknown...)
			continue
		}
		out[target] = value
	}

	if len(unknown) > 0 {
		return nil, nil, &UnknownFieldError{Fields: unknown}
	}
	return out, applied, nil
}

// normaliseObject rewrites the keys of a nested object whose canonical parent
// name is prefix. Nested alias paths are keyed as "<parent>.<child>".
func normaliseObject(prefix string, obj map[string]any, am *AliasMap, strict bool) (map[string]any, []AppliedAlias, []string) {
	out := make(map[string]any, len(obj))
	var applied []AppliedAlias
	var unknown []string

	for _, key := range sortedKeys(obj) {
		value := obj[key]
		path := prefix + "." + key

		if canonPath, ok := am.Aliases[path]; ok {
			canonKey := strings.TrimPrefix(canonPath, prefix+".")
			if _, dup := obj[canonKey]; dup {
				continue
			}
			out[canonKey] = value
			applied = append(applied, AppliedAlias{From: path, To: canonPath})
			continue
		}
		if am.IsCanonical(path) {
			out[key] = value
			continue
		}
		if strict {
			unknown = append(unknown, path)
			continue
		}
		out[key] = value
	}
	return out, applied, unknown
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
