package service

import (
	"context"
	"errors"

	"postboard/internal/models"
	"postboard/internal/repository"
)

// UnknownAuthorName is shown when a post's author no longer resolves.
const UnknownAuthorName = "Unknown author"

// sortColumns are the columns the listing may be ordered by.
var sortColumns = map[string]bool{
	"created_at": true,
	"title":      true,
}

// CreatePostInput carries the post creation payload.
type CreatePostInput struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	AuthorID uint   `json:"author"`
}

// UpdatePostInput carries a partial post update. Nil fields stay unchanged.
type UpdatePostInput struct {
	ID    uint    `json:"id"`
	Title *string `json:"title"`
	Text  *string `json:"text"`
}

// ListPostsInput carries the listing query parameters before validation.
type ListPostsInput struct {
	SortBy   string
	Limit    int
	AuthorID uint
}

// PostService handles post creation, retrieval, listing and mutation.
type PostService struct {
	posts repository.PostRepository
	users repository.UserRepository
}

// NewPostService creates a new post service.
func NewPostService(posts repository.PostRepository, users repository.UserRepository) *PostService {
	return &PostService{posts: posts, users: users}
}

// CreatePost validates the payload and stores a new post. An empty title
// falls back to the default.
func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	if input.Text == "" {
		return nil, models.NewValidationError("text is required")
	}
	if input.AuthorID == 0 {
		return nil, models.NewValidationError("author is required")
	}
	title := input.Title
	if title == "" {
		title = models.DefaultPostTitle
	}

	post := &models.Post{
		Title:    title,
		Text:     input.Text,
		AuthorID: input.AuthorID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost returns the post with the author's display name resolved. Posts
// whose author record is gone still render, with a placeholder name.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.PostDetail, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	authorName := UnknownAuthorName
	author, err := s.users.GetByID(ctx, post.AuthorID)
	if err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
			return nil, err
		}
	} else {
		authorName = author.Name
	}

	detail := post.Detail(authorName)
	return &detail, nil
}

// ListPosts validates the sort column and returns matching post summaries,
// newest first by default.
func (s *PostService) ListPosts(ctx context.Context, input ListPostsInput) ([]models.PostSummary, error) {
	sortBy := input.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	if !sortColumns[sortBy] {
		return nil, models.NewValidationError("desc must be one of: created_at, title")
	}
	if input.Limit < 0 {
		return nil, models.NewValidationError("limit must not be negative")
	}

	posts, err := s.posts.List(ctx, repository.ListFilter{
		SortBy:   sortBy,
		Limit:    input.Limit,
		AuthorID: input.AuthorID,
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]models.PostSummary, 0, len(posts))
	for i := range posts {
		summaries = append(summaries, posts[i].Summary())
	}
	return summaries, nil
}

// UpdatePost applies a partial update to an existing post.
func (s *PostService) UpdatePost(ctx context.Context, input UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Text != nil {
		if *input.Text == "" {
			return nil, models.NewValidationError("text must not be empty")
		}
		post.Text = *input.Text
	}
	if post.Title == "" {
		post.Title = models.DefaultPostTitle
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post by ID.
func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	return s.posts.Delete(ctx, id)
}
