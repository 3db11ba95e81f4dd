package models

type Category struct {
	ID          uint   `json:"id" gorm:"primarykey"`
	Name        string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string `json:"description" gorm:"size:255"`
}
