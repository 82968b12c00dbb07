package config

// Stats summarizes the resolved configuration for the /health endpoint,
// mirroring the teacher's ConfigStats aggregation.
type Stats struct {
	Port                int     `json:"port"`
	TimezoneOffsetHours int     `json:"timezone_offset_hours"`
	GraphMaxHops        int     `json:"graph_max_hops"`
	SelfRAGThreshold    float64 `json:"self_rag_threshold"`
	BackupRetentionDays int     `json:"backup_retention_days"`
	ChatModel           string  `json:"chat_model"`
}

// Stats returns a health/debug-facing summary of c.
func (c *Config) Stats() Stats {
	return Stats{
		Port:                c.Port,
		TimezoneOffsetHours: c.TimezoneOffsetHours,
		GraphMaxHops:        c.Thresholds.GraphMaxHops,
		SelfRAGThreshold:    c.Thresholds.SelfRAGThreshold,
		BackupRetentionDays: c.Retention.BackupRetentionDays,
		ChatModel:           c.LLM.ChatModel,
	}
}

// LocalHourToUTC converts a local-clock hour to its UTC hour using the
// spec's conversion rule: (local_hour - tz_offset_hours) mod 24.
func (c *Config) LocalHourToUTC(localHour int) int {
	h := (localHour - c.TimezoneOffsetHours) % 24
	if h < 0 {
		h += 24
	}
	return h
}
