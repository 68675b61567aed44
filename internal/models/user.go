// Package models contains data structures for the bloglist domain.
package models

import "time"

// User is a registered account. Users own blogs and are never deleted.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Name         string `json:"name"`
	PasswordHash string `gorm:"not null" json:"-"`
	// BlogCount mirrors len(Blogs); incremented in the same transaction as the blog insert.
	BlogCount int       `gorm:"not null;default:0" json:"blog_count"`
	Blogs     []Blog    `gorm:"foreignKey:UserID" json:"blogs,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
