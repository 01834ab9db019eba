package dto

import (
	"time"

	"golang-market-intel/internal/entity"
)

// SectorMomentum is an aggregate view of one sector within a run. Sectors
// with fewer than two covered symbols are not reported.
type SectorMomentum struct {
	Sector       string  `json:"sector"`
	AvgComposite float64 `json:"avg_composite" gorm:"column:avg_composite"`
	TopSymbol    string  `json:"top_symbol" gorm:"column:top_symbol"`
	SymbolCount  int     `json:"symbol_count" gorm:"column:symbol_count"`
}

// RunBrief is everything the report sink needs to render one run.
type RunBrief struct {
	Run             *entity.PipelineRun
	Recommendations []entity.Recommendation
	Sectors         []SectorMomentum
	GeneratedAt     time.Time
	TopN            int
}
