package repository

import (
	"context"
	"strings"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/intel/dto"

	"gorm.io/gorm"
)

// RecommendationRepository defines the interface for persisted
// recommendations.
type RecommendationRepository interface {
	BulkCreate(ctx context.Context, recs []entity.Recommendation) error
	FindByRunID(ctx context.Context, runID string, action entity.Action, limit int) ([]entity.Recommendation, error)
	FindLatestForSymbol(ctx context.Context, symbolCode string) (*entity.Recommendation, error)
	SectorMomentum(ctx context.Context, runID string) ([]dto.SectorMomentum, error)
}

// NewRecommendationRepository creates a new instance of
// RecommendationRepository.
func NewRecommendationRepository(db *gorm.DB) RecommendationRepository {
	return &recommendationRepository{db: db}
}

type recommendationRepository struct {
	db *gorm.DB
}

func (r *recommendationRepository) BulkCreate(ctx context.Context, recs []entity.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&recs, 100).Error
}

func (r *recommendationRepository) FindByRunID(ctx context.Context, runID string, action entity.Action, limit int) ([]entity.Recommendation, error) {
	var recs []entity.Recommendation
	q := r.db.WithContext(ctx).Where("run_id = ?", runID)
	if action != "" {
		q = q.Where("action = ?", action)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("rank asc").Find(&recs).Error
	return recs, err
}

func (r *recommendationRepository) FindLatestForSymbol(ctx context.Context, symbolCode string) (*entity.Recommendation, error) {
	var rec entity.Recommendation
	err := r.db.WithContext(ctx).
		Where("symbol_code = ?", strings.ToUpper(symbolCode)).
		Order("created_at desc").
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SectorMomentum aggregates composite scores per sector for one run. Only
// sectors with at least two scored symbols are returned, hottest first.
func (r *recommendationRepository) SectorMomentum(ctx context.Context, runID string) ([]dto.SectorMomentum, error) {
	var sectors []dto.SectorMomentum
	err := r.db.WithContext(ctx).Raw(`
	SELECT
		rec.sector,
		AVG(rec.composite) AS avg_composite,
		COUNT(*) AS symbol_count,
		(ARRAY_AGG(rec.symbol_code ORDER BY rec.composite DESC))[1] AS top_symbol
	FROM recommendations AS rec
	WHERE rec.run_id = ?
	AND rec.composite IS NOT NULL
	AND rec.sector <> ''
	GROUP BY rec.sector
	HAVING COUNT(*) >= 2
	ORDER BY avg_composite DESC
`, runID).Scan(&sectors).Error
	return sectors, err
}
