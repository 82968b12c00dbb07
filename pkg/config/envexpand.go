package config

import "os"

// ExpandEnv expands environment variables in YAML content using Go's
// standard library (${VAR} and $VAR syntax).
//
// Missing variables expand to an empty string; validation is responsible
// for catching required fields left empty by that expansion.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
