package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/dktlearn/internal/client/models"
)

// Feed is one viewer's cached copy of the post list. Writes go through
// CommunityService and are followed by a list refresh; the refresh that
// arrives last wins.
//
// Likes are optimistic: the viewer's name is flipped in the cached post
// before the call, reverted if the call fails, and the list is then
// refreshed to adopt whatever the server decided.
type Feed struct {
	svc CommunityService

	mu     sync.Mutex
	viewer string
	posts  []models.Post
}

func NewFeed(svc CommunityService) *Feed {
	return &Feed{svc: svc}
}

// SetViewer sets whose likes the optimistic toggle flips and drops the cache.
func (f *Feed) SetViewer(username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewer = username
	f.posts = nil
}

// Posts returns a copy of the cached list.
func (f *Feed) Posts() []models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clonePosts(f.posts)
}

// Post returns the cached post with id.
func (f *Feed) Post(id models.ID) (models.Post, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.index(id); i >= 0 {
		return clonePost(f.posts[i]), true
	}
	return models.Post{}, false
}

// Refresh reloads the list from the server.
func (f *Feed) Refresh(ctx context.Context) ([]models.Post, error) {
	posts, err := f.svc.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = posts
	return clonePosts(posts), nil
}

func (f *Feed) Create(ctx context.Context, title, body string) (*models.Post, error) {
	post, err := f.svc.CreatePost(ctx, title, body)
	if err != nil {
		return nil, err
	}
	if _, err := f.Refresh(ctx); err != nil {
		return post, err
	}
	return post, nil
}

func (f *Feed) Update(ctx context.Context, id models.ID, title, body string) (*models.Post, error) {
	post, err := f.svc.UpdatePost(ctx, id, title, body)
	if err != nil {
		return nil, err
	}
	if _, err := f.Refresh(ctx); err != nil {
		return post, err
	}
	return post, nil
}

func (f *Feed) Delete(ctx context.Context, id models.ID) error {
	if err := f.svc.DeletePost(ctx, id); err != nil {
		return err
	}
	_, err := f.Refresh(ctx)
	return err
}

// Reply appends the created reply to the cached post, or refreshes the list
// when the server did not return it.
func (f *Feed) Reply(ctx context.Context, id models.ID, body string) (*models.Reply, error) {
	reply, err := f.svc.Reply(ctx, id, body)
	if err != nil {
		return nil, err
	}

	if reply != nil {
		f.mu.Lock()
		i := f.index(id)
		if i >= 0 {
			f.posts[i].Replies = append(f.posts[i].Replies, *reply)
		}
		f.mu.Unlock()
		if i >= 0 {
			return reply, nil
		}
	}

	if _, err := f.Refresh(ctx); err != nil {
		return reply, err
	}
	return reply, nil
}

// ToggleLike flips the viewer's like on post id and returns the post as the
// feed now holds it.
func (f *Feed) ToggleLike(ctx context.Context, id models.ID) (models.Post, error) {
	f.mu.Lock()
	var previous []string
	optimistic := f.viewer != "" && f.index(id) >= 0
	if optimistic {
		i := f.index(id)
		previous = slices.Clone(f.posts[i].Likes)
		f.posts[i].Likes = flip(f.posts[i].Likes, f.viewer)
	}
	f.mu.Unlock()

	echoed, err := f.svc.ToggleLike(ctx, id)
	if err != nil {
		if optimistic {
			f.restoreLikes(id, previous)
		}
		return models.Post{}, err
	}

	if echoed != nil {
		f.mu.Lock()
		if j := f.index(id); j >= 0 {
			f.posts[j] = *echoed
		}
		f.mu.Unlock()
	}

	if _, err := f.Refresh(ctx); err != nil {
		post, _ := f.Post(id)
		return post, fmt.Errorf("reload posts after like: %w", err)
	}

	post, ok := f.Post(id)
	if !ok {
		return models.Post{}, fmt.Errorf("post %s is gone", id)
	}
	return post, nil
}

func (f *Feed) restoreLikes(id models.ID, likes []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.index(id); i >= 0 {
		f.posts[i].Likes = likes
	}
}

// index finds id in the cache. Caller holds mu.
func (f *Feed) index(id models.ID) int {
	return slices.IndexFunc(f.posts, func(p models.Post) bool { return p.ID == id })
}

func flip(likes []string, who string) []string {
	if i := slices.Index(likes, who); i >= 0 {
		return slices.Delete(slices.Clone(likes), i, i+1)
	}
	return append(slices.Clone(likes), who)
}

func clonePost(p models.Post) models.Post {
	p.Likes = slices.Clone(p.Likes)
	p.Replies = slices.Clone(p.Replies)
	return p
}

func clonePosts(posts []models.Post) []models.Post {
	if posts == nil {
		return nil
	}
	out := make([]models.Post, len(posts))
	for i, p := range posts {
		out[i] = clonePost(p)
	}
	return out
}
