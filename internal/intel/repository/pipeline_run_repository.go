package repository

import (
	"context"

	"golang-market-intel/internal/entity"

	"gorm.io/gorm"
)

// PipelineRunRepository defines the interface for pipeline run records.
type PipelineRunRepository interface {
	Create(ctx context.Context, run *entity.PipelineRun) error
	Update(ctx context.Context, run *entity.PipelineRun) error
	FindByID(ctx context.Context, id string) (*entity.PipelineRun, error)
	FindLatestCompleted(ctx context.Context) (*entity.PipelineRun, error)
	List(ctx context.Context, limit int) ([]entity.PipelineRun, error)
	AddDiagnostics(ctx context.Context, diags []entity.RunDiagnostic) error
}

// NewPipelineRunRepository creates a new instance of PipelineRunRepository.
func NewPipelineRunRepository(db *gorm.DB) PipelineRunRepository {
	return &pipelineRunRepository{db: db}
}

type pipelineRunRepository struct {
	db *gorm.DB
}

func (r *pipelineRunRepository) Create(ctx context.Context, run *entity.PipelineRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *pipelineRunRepository) Update(ctx context.Context, run *entity.PipelineRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *pipelineRunRepository) FindByID(ctx context.Context, id string) (*entity.PipelineRun, error) {
	var run entity.PipelineRun
	if err := r.db.WithContext(ctx).Preload("Diagnostics").First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *pipelineRunRepository) FindLatestCompleted(ctx context.Context) (*entity.PipelineRun, error) {
	var run entity.PipelineRun
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.RunStatusCompleted).
		Order("started_at desc").
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *pipelineRunRepository) List(ctx context.Context, limit int) ([]entity.PipelineRun, error) {
	var runs []entity.PipelineRun
	err := r.db.WithContext(ctx).
		Order("started_at desc").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

func (r *pipelineRunRepository) AddDiagnostics(ctx context.Context, diags []entity.RunDiagnostic) error {
	if len(diags) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&diags).Error
}
