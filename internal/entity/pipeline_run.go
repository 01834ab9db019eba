package entity

import (
	"time"
)

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run triggers.
const (
	RunTriggerCron   = "cron"
	RunTriggerManual = "manual"
	RunTriggerAPI    = "api"
)

// PipelineRun records one execution of the intelligence pipeline.
type PipelineRun struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	Status        RunStatus       `gorm:"not null" json:"status"`
	Trigger       string          `json:"trigger"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    *time.Time      `json:"finished_at,omitempty"`
	ArticleCount  int             `json:"article_count"`
	MentionCount  int             `json:"mention_count"`
	ResolvedCount int             `json:"resolved_count"`
	SymbolCount   int             `json:"symbol_count"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	Diagnostics   []RunDiagnostic `gorm:"foreignKey:RunID" json:"diagnostics,omitempty"`
}

// TableName specifies the table name for the PipelineRun model.
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}

// Diagnostic stages.
const (
	StageCollect   = "collect"
	StageResolve   = "resolve"
	StageSentiment = "sentiment"
	StageFetch     = "fetch"
	StageScore     = "score"
	StageRecommend = "recommend"
	StageReport    = "report"
)

// RunDiagnostic is a per-symbol (or per-stage) note recorded when a step of
// a run degraded or was skipped. Diagnostics never abort a run.
type RunDiagnostic struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	RunID      string    `gorm:"type:uuid;index;not null" json:"run_id"`
	SymbolCode string    `json:"symbol_code,omitempty"`
	Stage      string    `gorm:"not null" json:"stage"`
	Message    string    `gorm:"not null" json:"message"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the RunDiagnostic model.
func (RunDiagnostic) TableName() string {
	return "run_diagnostics"
}
