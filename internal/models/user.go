// Package models contains data structures for the application's domain models.
package models

import "time"

// DefaultUserName is used when an account is registered without a display name.
const DefaultUserName = "Not name"

// User represents a registered author.
//
// Password holds a bcrypt hash and Token holds the opaque session identifier
// issued at account creation; neither is ever serialized. The composite
// unique index mirrors the (name, login) uniqueness constraint of the store.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_users_name_login" json:"name"`
	Login     string    `gorm:"not null;uniqueIndex:idx_users_name_login" json:"login"`
	Password  string    `gorm:"not null" json:"-"`
	Token     string    `gorm:"uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Posts     []Post    `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}
