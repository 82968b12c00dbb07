package graph

import (
	"fmt"
	"sort"
	"strings"
)

// FormatContext renders a set of retrieved entities as a compact,
// LLM-facing text block, stripping internal properties and sorting keys
// for deterministic output.
func FormatContext(entities []map[string]any) string {
	var b strings.Builder
	for _, raw := range entities {
		props := stripInternal(raw)
		name, _ := props["name"].(string)
		nameAr, _ := props["name_ar"].(string)
		b.WriteString(DisplayName(name, nameAr))

		keys := make([]string, 0, len(props))
		for k := range props {
			if k == "name" || k == "name_ar" {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " | %s: %v", k, props[k])
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatContextLines renders multi-hop QueryEntityContext output as a
// newline-joined block, already capped at multihopLineCap by the caller.
func FormatContextLines(lines []ContextLine) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Text)
	}
	return strings.Join(out, "\n")
}
