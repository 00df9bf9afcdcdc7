package simulation

import "strings"

// OverrideValue builds the override document setting a dotted config key,
// e.g. "align.effectiveRange" gives {"align": {"effectiveRange": v}}.
func OverrideValue(key string, v any) map[string]any {
	parts := strings.Split(key, ".")
	doc := map[string]any{parts[len(parts)-1]: v}
	for i := len(parts) - 2; i >= 0; i-- {
		doc = map[string]any{parts[i]: doc}
	}
	return doc
}
