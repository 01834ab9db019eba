package repository

import (
	"context"

	"golang-market-intel/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SymbolRepository defines the interface for the symbol master table.
type SymbolRepository interface {
	FindActive(ctx context.Context) ([]entity.Symbol, error)
	FindByCode(ctx context.Context, code string) (*entity.Symbol, error)
	FindBaseline(ctx context.Context) ([]entity.Symbol, error)
	Upsert(ctx context.Context, symbols []entity.Symbol) error
}

// NewSymbolRepository creates a new instance of SymbolRepository.
func NewSymbolRepository(db *gorm.DB) SymbolRepository {
	return &symbolRepository{db: db}
}

type symbolRepository struct {
	db *gorm.DB
}

func (r *symbolRepository) FindActive(ctx context.Context) ([]entity.Symbol, error) {
	var symbols []entity.Symbol
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("code asc").
		Find(&symbols).Error
	return symbols, err
}

func (r *symbolRepository) FindByCode(ctx context.Context, code string) (*entity.Symbol, error) {
	var symbol entity.Symbol
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&symbol).Error; err != nil {
		return nil, err
	}
	return &symbol, nil
}

func (r *symbolRepository) FindBaseline(ctx context.Context) ([]entity.Symbol, error) {
	var symbols []entity.Symbol
	err := r.db.WithContext(ctx).
		Where("active = ? AND baseline = ?", true, true).
		Order("code asc").
		Find(&symbols).Error
	return symbols, err
}

// Upsert inserts or refreshes symbol master rows, keyed by code.
func (r *symbolRepository) Upsert(ctx context.Context, symbols []entity.Symbol) error {
	if len(symbols) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "sector", "yahoo_ticker", "aliases", "market_cap_rank", "baseline", "active",
		}),
	}).Create(&symbols).Error
}
