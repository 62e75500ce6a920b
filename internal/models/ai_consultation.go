package models

import "time"

const (
	SenderUser = "USER"
	SenderAI   = "AI"
)

type AiConsultationThread struct {
	ID        uint                    `gorm:"primaryKey"`
	UserID    uint                    `gorm:"index;not null"`
	User      User
	RecipeID  *uint                   `gorm:"index"`
	Theme     string                  `gorm:"size:200;not null"`
	Messages  []AiConsultationMessage `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AiConsultationMessage struct {
	ID                 uint               `gorm:"primaryKey"`
	ThreadID           uint               `gorm:"index;not null"`
	Role               string             `gorm:"size:20;not null"` // SenderUser | SenderAI
	Content            string             `gorm:"type:text;not null"`
	ReferencedArticles []KnowledgeArticle `gorm:"many2many:ai_message_knowledge_refs"`
	CreatedAt          time.Time
}
