package seed

import (
	"fmt"

	"postboard/internal/models"

	"gorm.io/gorm"
)

// Demo populates the database with a handful of authors and a spread of
// posts. Intended for local development.
func Demo(db *gorm.DB, users, postsPerUser int) error {
	if users <= 0 {
		users = 5
	}
	if postsPerUser <= 0 {
		postsPerUser = 4
	}

	factory := NewFactory(db)
	for i := 0; i < users; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}

		posts := make([]*models.Post, 0, postsPerUser)
		for j := 0; j < postsPerUser; j++ {
			posts = append(posts, factory.BuildPost(user))
		}
		if err := factory.CreatePostsBatch(posts); err != nil {
			return fmt.Errorf("seed posts for user %d: %w", user.ID, err)
		}
	}
	return nil
}
