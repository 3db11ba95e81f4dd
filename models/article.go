package models

import (
	"time"
)

type Article struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	Title      string    `json:"title" gorm:"size:200;not null"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	AuthorID   uint      `json:"author_id" gorm:"not null;index"`
	Author     User      `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CategoryID uint      `json:"category_id" gorm:"not null;index"`
	Category   Category  `json:"category" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Tags       []Tag     `json:"tags" gorm:"-"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time `json:"updated_at"`
}
