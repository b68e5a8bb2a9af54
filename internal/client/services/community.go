package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dktlearn/internal/client/client"
	"github.com/dmitrijs2005/dktlearn/internal/client/models"
)

// CommunityService covers the message board.
type CommunityService interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, title, body string) (*models.Post, error)
	UpdatePost(ctx context.Context, id models.ID, title, body string) (*models.Post, error)
	DeletePost(ctx context.Context, id models.ID) error
	Reply(ctx context.Context, id models.ID, body string) (*models.Reply, error)
	ToggleLike(ctx context.Context, id models.ID) (*models.Post, error)
}

type communityService struct {
	client client.Client
}

func NewCommunityService(c client.Client) CommunityService {
	return &communityService{client: c}
}

func (s *communityService) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := s.client.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func postInput(title, body string) (models.PostInput, error) {
	if blank(title) {
		return models.PostInput{}, invalid("title", "title is required")
	}
	if blank(body) {
		return models.PostInput{}, invalid("body", "content is required")
	}
	return models.PostInput{Title: strings.TrimSpace(title), Body: strings.TrimSpace(body)}, nil
}

func requireID(id models.ID) error {
	if blank(id.String()) {
		return invalid("id", "post id is required")
	}
	return nil
}

func (s *communityService) CreatePost(ctx context.Context, title, body string) (*models.Post, error) {
	in, err := postInput(title, body)
	if err != nil {
		return nil, err
	}
	post, err := s.client.CreatePost(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

func (s *communityService) UpdatePost(ctx context.Context, id models.ID, title, body string) (*models.Post, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	in, err := postInput(title, body)
	if err != nil {
		return nil, err
	}
	post, err := s.client.UpdatePost(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update post %s: %w", id, err)
	}
	return post, nil
}

func (s *communityService) DeletePost(ctx context.Context, id models.ID) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.client.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	return nil
}

func (s *communityService) Reply(ctx context.Context, id models.ID, body string) (*models.Reply, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if blank(body) {
		return nil, invalid("reply", "reply cannot be empty")
	}
	reply, err := s.client.ReplyToPost(ctx, id, models.ReplyInput{Body: strings.TrimSpace(body)})
	if err != nil {
		return nil, fmt.Errorf("reply to post %s: %w", id, err)
	}
	return reply, nil
}

// ToggleLike flips the caller's like. The server decides the resulting
// state; the returned post is nil when it did not echo one.
func (s *communityService) ToggleLike(ctx context.Context, id models.ID) (*models.Post, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	post, err := s.client.LikePost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("like post %s: %w", id, err)
	}
	return post, nil
}
