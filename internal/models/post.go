package models

import "time"

// DefaultPostTitle is assigned when a post is created without a title.
const DefaultPostTitle = "Untitled"

// TimeLayout is the human-readable timestamp format used in API responses
// consumed by the bot client.
const TimeLayout = "2006-01-02 15:04"

// Post represents a blog post authored by a user.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  uint      `gorm:"not null;index" json:"author"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostSummary is the list-item shape returned by the posts listing.
type PostSummary struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

// PostDetail is the single-post shape with the author's display name resolved.
type PostDetail struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Text       string `json:"text"`
	AuthorID   uint   `json:"author"`
	AuthorName string `json:"author_name"`
	CreatedAt  string `json:"created_at"`
}

// Summary converts a post into its listing representation.
func (p *Post) Summary() PostSummary {
	return PostSummary{
		ID:        p.ID,
		Title:     p.Title,
		CreatedAt: p.CreatedAt.Format(TimeLayout),
	}
}

// Detail converts a post into its detail representation using the given
// author display name.
func (p *Post) Detail(authorName string) PostDetail {
	return PostDetail{
		ID:         p.ID,
		Title:      p.Title,
		Text:       p.Text,
		AuthorID:   p.AuthorID,
		AuthorName: authorName,
		CreatedAt:  p.CreatedAt.Format(TimeLayout),
	}
}
