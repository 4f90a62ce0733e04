package config

import "time"

// PipelineConfig bounds the persistence call behind a stage transition
type PipelineConfig struct {
	PersistTimeout time.Duration
	OverdueSweep   time.Duration
}

func loadPipelineConfig() PipelineConfig {
	return PipelineConfig{
		PersistTimeout: getEnvDuration("PIPELINE_PERSIST_TIMEOUT", 5*time.Second),
		OverdueSweep:   getEnvDuration("EVALUATION_OVERDUE_SWEEP", time.Hour),
	}
}
