package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Action is the final stance the engine takes on a symbol.
type Action string

const (
	ActionBuy              Action = "BUY"
	ActionSell             Action = "SELL"
	ActionHold             Action = "HOLD"
	ActionInsufficientData Action = "INSUFFICIENT_DATA"
)

// Recommendation is one fused, ranked verdict for a symbol within a run.
// Composite is nil when no signal component was available. Rationale holds
// the per-component contribution breakdown as JSON.
type Recommendation struct {
	ID               int64          `gorm:"primaryKey" json:"id"`
	RunID            string         `gorm:"type:uuid;index;not null" json:"run_id"`
	SymbolCode       string         `gorm:"not null" json:"symbol_code"`
	Sector           string         `json:"sector"`
	Action           Action         `gorm:"not null" json:"action"`
	Composite        *float64       `json:"composite,omitempty"`
	Confidence       float64        `json:"confidence"`
	SentimentScore   *float64       `json:"sentiment_score,omitempty"`
	TechnicalScore   *float64       `json:"technical_score,omitempty"`
	FundamentalScore *float64       `json:"fundamental_score,omitempty"`
	DataCompleteness float64        `json:"data_completeness"`
	Rationale        datatypes.JSON `gorm:"type:jsonb" json:"rationale"`
	TargetLow        *float64       `json:"target_low,omitempty"`
	TargetHigh       *float64       `json:"target_high,omitempty"`
	Rank             int            `json:"rank"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the Recommendation model.
func (Recommendation) TableName() string {
	return "recommendations"
}
