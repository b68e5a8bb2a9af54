package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/dktlearn/internal/client/models"
)

var errUsageID = errors.New("a post id is required")

func postID(args []string) (models.ID, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", errUsageID
	}
	return models.ID(strings.TrimPrefix(args[0], "#")), nil
}

func formatTime(t models.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func (a *App) printSummary(p models.Post) {
	mark := ""
	if id := a.current(); id != nil && p.LikedBy(id.Username) {
		mark = " ♥"
	}
	a.printf("#%s  %s  by %s, %s (%s, %s)%s\n",
		p.ID, p.Title, p.Author, formatTime(p.CreatedAt),
		plural(len(p.Likes), "like", "likes"), plural(len(p.Replies), "reply", "replies"), mark)
}

// Posts lists the board.
func (a *App) Posts(ctx context.Context, _ []string) error {
	posts, err := a.feed.Refresh(ctx)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		a.println("No posts yet. Use 'post' to write the first one.")
		return nil
	}
	for _, p := range posts {
		a.printSummary(p)
	}
	return nil
}

// Show prints one post with its replies, loading the list when the post is
// not cached yet.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := postID(args)
	if err != nil {
		return err
	}

	p, ok := a.feed.Post(id)
	if !ok {
		if _, err := a.feed.Refresh(ctx); err != nil {
			return err
		}
		if p, ok = a.feed.Post(id); !ok {
			return fmt.Errorf("post #%s not found", id)
		}
	}

	a.printSummary(p)
	a.println()
	a.println(p.Body)
	if len(p.Likes) > 0 {
		a.println()
		a.println("Liked by: " + strings.Join(p.Likes, ", "))
	}
	for _, r := range p.Replies {
		a.println()
		a.printf("  %s, %s:\n", r.Author, formatTime(r.CreatedAt))
		for _, line := range strings.Split(r.Body, "\n") {
			a.println("    " + line)
		}
	}
	return nil
}

// Post writes a new post.
func (a *App) Post(ctx context.Context, _ []string) error {
	title, err := a.ask("Title")
	if err != nil {
		return err
	}
	body, err := getMultiline(a.reader, "Content", a.out)
	if err != nil {
		return err
	}

	var created *models.Post
	err = a.busy.Do(ctx, "post:create", func(ctx context.Context) error {
		created, err = a.feed.Create(ctx, title, body)
		return err
	})
	if err != nil {
		return err
	}

	if created != nil {
		a.printf("Posted #%s.\n", created.ID)
	} else {
		a.println("Posted.")
	}
	return nil
}

// Edit changes a post's title and content. Empty answers keep the current
// values.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := postID(args)
	if err != nil {
		return err
	}

	current, ok := a.feed.Post(id)
	if !ok {
		if _, err := a.feed.Refresh(ctx); err != nil {
			return err
		}
		current, _ = a.feed.Post(id)
	}

	title, err := a.ask(fmt.Sprintf("Title [%s]", current.Title))
	if err != nil {
		return err
	}
	if title == "" {
		title = current.Title
	}
	body, err := getMultiline(a.reader, "Content (empty keeps the current text)", a.out)
	if err != nil {
		return err
	}
	if body == "" {
		body = current.Body
	}

	err = a.busy.Do(ctx, "post:edit:"+id.String(), func(ctx context.Context) error {
		_, err := a.feed.Update(ctx, id, title, body)
		return err
	})
	if err != nil {
		return err
	}
	a.printf("Post #%s updated.\n", id)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := postID(args)
	if err != nil {
		return err
	}
	sure, err := getYesNo(a.reader, fmt.Sprintf("Delete post #%s?", id), a.out)
	if err != nil || !sure {
		return err
	}

	err = a.busy.Do(ctx, "post:delete:"+id.String(), func(ctx context.Context) error {
		return a.feed.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	a.printf("Post #%s deleted.\n", id)
	return nil
}

// Like toggles the current user's like on a post.
func (a *App) Like(ctx context.Context, args []string) error {
	id, err := postID(args)
	if err != nil {
		return err
	}

	if _, ok := a.feed.Post(id); !ok {
		if _, err := a.feed.Refresh(ctx); err != nil {
			return err
		}
	}

	var post models.Post
	err = a.busy.Do(ctx, "like:"+id.String(), func(ctx context.Context) error {
		post, err = a.feed.ToggleLike(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	verb := "Unliked"
	if me := a.current(); me != nil && post.LikedBy(me.Username) {
		verb = "Liked"
	}
	a.printf("%s #%s (%s).\n", verb, id, plural(len(post.Likes), "like", "likes"))
	return nil
}

func (a *App) Reply(ctx context.Context, args []string) error {
	id, err := postID(args)
	if err != nil {
		return err
	}
	body, err := getMultiline(a.reader, "Reply", a.out)
	if err != nil {
		return err
	}

	err = a.busy.Do(ctx, "reply:"+id.String(), func(ctx context.Context) error {
		_, err := a.feed.Reply(ctx, id, body)
		return err
	})
	if err != nil {
		return err
	}
	a.printf("Replied to #%s.\n", id)
	return nil
}
