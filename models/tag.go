package models

import (
	"time"
)

type Tag struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"size:50;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// ArticleTag is the explicit join row between Article and Tag.
type ArticleTag struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	ArticleID uint      `json:"article_id" gorm:"not null;uniqueIndex:unique_article_tag"`
	Article   *Article  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	TagID     uint      `json:"tag_id" gorm:"not null;uniqueIndex:unique_article_tag;index"`
	Tag       *Tag      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}
