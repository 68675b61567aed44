package models

import "time"

// Blog is a bookmarked post owned by exactly one user.
type Blog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Author    string    `json:"author"`
	URL       string    `gorm:"column:url" json:"url"`
	Likes     int       `gorm:"not null;default:0" json:"likes"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Comments  []Comment `gorm:"foreignKey:BlogID;constraint:OnDelete:CASCADE" json:"comments"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlogFields are the mutable blog fields. Nil pointers are left untouched on update.
type BlogFields struct {
	Title  *string
	Author *string
	URL    *string
	Likes  *int
}
