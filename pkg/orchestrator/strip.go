package orchestrator

import (
	"regexp"
	"strings"
)

// toolsAvailableRE and internalKeywords strip Open-WebUI-injected
// retrieval scaffolding ("### Tools available", tool-call JSON echoes)
// before a turn reaches working memory, per spec.md §4.1 post-processing
// step 6. The match is intentionally conservative — spec.md itself notes
// this stripping is brittle against front-end changes and is not meant to
// be hardened further here.
var toolsAvailableRE = regexp.MustCompile(`(?is)###?\s*tools?\s+available.*?(\n\n|$)`)

var internalKeywords = []string{"<tool_call>", "</tool_call>", "[TOOL_CALLS]", "<|tool_calls_section_begin|>"}

// stripOWUIGarbage removes Open-WebUI-injected retrieval scaffolding
// before a turn reaches working memory.
func stripOWUIGarbage(text string) string {
	text = toolsAvailableRE.ReplaceAllString(text, "")
	for _, kw := range internalKeywords {
		text = strings.ReplaceAll(text, kw, "")
	}
	return strings.TrimSpace(text)
}
