// Package masking redacts personal-data fragments — Saudi national ID
// numbers, phone numbers, IBANs, email addresses — from structured log
// output before it reaches slog's handler chain. Adapted from tarsy's
// pkg/masking: that package's per-MCP-server registry and code-based
// secret maskers (Kubernetes Secret YAML parsing) have no equivalent in
// this system (no MCP servers, no Kubernetes manifests to scan), but its
// core shape — a table of named, pre-compiled regex patterns applied in
// sequence, fail-open on redaction error — is reused directly.
package masking

import "regexp"

// CompiledPattern is one named, pre-compiled redaction rule.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// defaultPatterns is this system's fixed built-in pattern table — no
// per-server custom patterns exist here, so there is nothing to resolve
// dynamically at request time the way tarsy's MCP-server registry did.
func defaultPatterns() []*CompiledPattern {
	return []*CompiledPattern{
		{
			Name:        "saudi_national_id",
			Regex:       regexp.MustCompile(`\b[12]\d{9}\b`),
			Replacement: "[ID_REDACTED]",
		},
		{
			Name:        "phone_number",
			Regex:       regexp.MustCompile(`(?:\+?966|0)5\d{8}\b`),
			Replacement: "[PHONE_REDACTED]",
		},
		{
			Name:        "iban",
			Regex:       regexp.MustCompile(`\bSA\d{2}[0-9A-Z]{18}\b`),
			Replacement: "[IBAN_REDACTED]",
		},
		{
			Name:        "email",
			Regex:       regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[a-zA-Z]{2,}\b`),
			Replacement: "[EMAIL_REDACTED]",
		},
	}
}
