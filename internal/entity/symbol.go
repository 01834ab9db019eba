package entity

import (
	"time"

	"github.com/lib/pq"
)

// Symbol is a master record for a listed company. Aliases carry every name
// the resolver may encounter in news text (canonical name, short names,
// common abbreviations).
type Symbol struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Code          string         `gorm:"unique;not null" json:"code"`
	Name          string         `gorm:"not null" json:"name"`
	Sector        string         `json:"sector"`
	YahooTicker   string         `gorm:"column:yahoo_ticker" json:"yahoo_ticker"`
	Aliases       pq.StringArray `gorm:"type:text[]" json:"aliases"`
	MarketCapRank int            `json:"market_cap_rank"`
	Baseline      bool           `json:"baseline"`
	Active        bool           `gorm:"default:true" json:"active"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Symbol model.
func (Symbol) TableName() string {
	return "symbols"
}
