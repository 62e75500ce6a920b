package models

import "time"

// KnowledgeCategory groups articles; SortOrder drives the listing order.
type KnowledgeCategory struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	SortOrder int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KnowledgeArticle is a knowledge-base entry: cooking know-how, service
// tips and so on. Tags is a free-form comma-separated string searched
// together with title and content.
type KnowledgeArticle struct {
	ID             uint              `gorm:"primaryKey"`
	Title          string            `gorm:"size:200;not null"`
	Content        string            `gorm:"type:text;not null"`
	CategoryID     uint              `gorm:"index;not null"`
	Category       KnowledgeCategory
	Tags           string            `gorm:"size:500"`
	AuthorID       uint              `gorm:"index;not null"`
	Author         User
	RelatedRecipes []Recipe          `gorm:"many2many:knowledge_article_recipes"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
