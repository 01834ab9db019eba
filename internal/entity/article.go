package entity

import (
	"time"
)

// Article represents a collected news article.
type Article struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Title          string          `gorm:"not null" json:"title"`
	Link           string          `gorm:"not null" json:"link"`
	Source         string          `json:"source"`
	Summary        string          `json:"summary"`
	PublishedAt    *time.Time      `json:"published_at,omitempty"`
	HashIdentifier string          `gorm:"unique;not null" json:"hash_identifier"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	Mentions       []EntityMention `gorm:"foreignKey:ArticleID" json:"mentions,omitempty"`
}

// TableName specifies the table name for the Article model.
func (Article) TableName() string {
	return "articles"
}

// Resolution methods recorded on a mention.
const (
	ResolveMethodExact = "exact"
	ResolveMethodFuzzy = "fuzzy"
)

// EntityMention is a company mention found in an article. SymbolCode is
// empty when the mention could not be resolved; an unresolved mention is a
// normal outcome, not an error.
type EntityMention struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ArticleID  uint      `gorm:"index" json:"article_id"`
	RawText    string    `gorm:"not null" json:"raw_text"`
	SymbolCode string    `json:"symbol_code,omitempty"`
	Matched    bool      `json:"matched"`
	Method     string    `json:"method,omitempty"`
	Score      float64   `json:"score"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the EntityMention model.
func (EntityMention) TableName() string {
	return "entity_mentions"
}
