package orchestrator

import "strings"

// fuzzyMatch scores two short bilingual titles by normalized-token Jaccard
// overlap — a dependency-free stand-in for the open question of which
// fuzzy algorithm auto-dismiss uses (spec.md §9). No string-similarity
// library appears anywhere in the retrieval pack, and token overlap is
// cheap and stable for the short reminder/task titles this compares.
func fuzzyMatch(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	union := map[string]bool{}
	for t := range ta {
		union[t] = true
	}
	for t := range tb {
		union[t] = true
		if ta[t] {
			intersection++
		}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}

func tokenSet(s string) map[string]bool {
	out := map[string]bool{}
	for _, f := range strings.Fields(strings.ToLower(s)) {
		out[f] = true
	}
	return out
}
