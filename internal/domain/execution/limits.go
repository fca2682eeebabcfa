package execution

import "time"

// RunLimits describes optional resource boundaries for a single execution.
//
// A zero value RunLimits imposes no additional restrictions, which is the
// default for interactive console runs.
type RunLimits struct {
	// TimeLimit caps how long the program is allowed to run. Zero means no limit.
	TimeLimit time.Duration
	// MemoryLimitBytes caps the container memory usage in bytes. Zero means no limit.
	// Only container backends honour it.
	MemoryLimitBytes int64
}

// Normalize clamps negative values to zero.
func (l RunLimits) Normalize() RunLimits {
	if l.TimeLimit < 0 {
		l.TimeLimit = 0
	}
	if l.MemoryLimitBytes < 0 {
		l.MemoryLimitBytes = 0
	}
	return l
}

// Merge returns l with every positive field of overrides applied on top.
func (l RunLimits) Merge(overrides RunLimits) RunLimits {
	effective := l.Normalize()
	overrides = overrides.Normalize()

	if overrides.TimeLimit > 0 {
		effective.TimeLimit = overrides.TimeLimit
	}
	if overrides.MemoryLimitBytes > 0 {
		effective.MemoryLimitBytes = overrides.MemoryLimitBytes
	}
	return effective
}
