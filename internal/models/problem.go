package models

type Problem struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Title      string `gorm:"size:255;not null" json:"title"`
	Slug       string `gorm:"size:150;uniqueIndex;not null" json:"slug"`
	URL        string `gorm:"size:500;not null" json:"url"`
	Difficulty string `gorm:"size:10;not null;index" json:"difficulty"`
}
