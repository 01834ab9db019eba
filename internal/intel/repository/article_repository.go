package repository

import (
	"context"
	"fmt"
	"time"

	"golang-market-intel/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleRepository defines the interface for persisted news articles.
type ArticleRepository interface {
	// CreateIgnoreConflict inserts an article and its mentions, skipping
	// silently when the hash already exists. Returns true when inserted.
	CreateIgnoreConflict(ctx context.Context, article *entity.Article) (bool, error)
	FindSince(ctx context.Context, since time.Time) ([]entity.Article, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// NewArticleRepository creates a new instance of ArticleRepository.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

type articleRepository struct {
	db *gorm.DB
}

func (r *articleRepository) CreateIgnoreConflict(ctx context.Context, article *entity.Article) (bool, error) {
	inserted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mentions := article.Mentions
		article.Mentions = nil

		txInner := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hash_identifier"}},
			DoNothing: true,
		}).Create(article)
		if txInner.Error != nil {
			return txInner.Error
		}
		if txInner.RowsAffected == 0 {
			return nil
		}
		inserted = true

		if len(mentions) == 0 {
			return nil
		}
		for i := range mentions {
			mentions[i].ArticleID = article.ID
		}
		if err := tx.Create(&mentions).Error; err != nil {
			return fmt.Errorf("insert entity_mentions error: %w", err)
		}
		article.Mentions = mentions
		return nil
	})
	return inserted, err
}

func (r *articleRepository) FindSince(ctx context.Context, since time.Time) ([]entity.Article, error) {
	var articles []entity.Article
	err := r.db.WithContext(ctx).
		Preload("Mentions").
		Where("published_at >= ?", since).
		Order("published_at desc").
		Find(&articles).Error
	return articles, err
}

func (r *articleRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Article{}).
		Where("published_at >= ?", since).
		Count(&count).Error
	return count, err
}
