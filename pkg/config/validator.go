package config

import "fmt"

// Validate checks structural invariants on a resolved Config. It never
// rejects missing external-service credentials (those fail at connect
// time with BackendUnavailable, per spec.md §7) — only internally
// inconsistent values are rejected here.
func Validate(c *Config) error {
	if c.Port <= 0 || c.Port > 65535 {
		return NewValidationError("port", fmt.Errorf("%w: must be in 1..65535, got %d", ErrInvalidValue, c.Port))
	}
	if c.Thresholds.GraphMaxHops <= 0 {
		return NewValidationError("thresholds.graph_max_hops", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if c.Thresholds.EntityResolutionPersonThreshold <= 0 || c.Thresholds.EntityResolutionPersonThreshold > 1 {
		return NewValidationError("thresholds.entity_resolution_person_threshold", fmt.Errorf("%w: must be in (0,1]", ErrInvalidValue))
	}
	if c.Thresholds.EntityResolutionDefaultThreshold <= 0 || c.Thresholds.EntityResolutionDefaultThreshold > 1 {
		return NewValidationError("thresholds.entity_resolution_default_threshold", fmt.Errorf("%w: must be in (0,1]", ErrInvalidValue))
	}
	if c.Vector.EmbeddingDims <= 0 {
		return NewValidationError("vector.embedding_dims", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if c.LLM.MaxToolIterations <= 0 {
		return NewValidationError("llm.max_tool_iterations", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if c.Retention.BackupRetentionDays < 0 {
		return NewValidationError("retention.backup_retention_days", fmt.Errorf("%w: must be >= 0", ErrInvalidValue))
	}
	return nil
}
