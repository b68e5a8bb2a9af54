package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ID is a backend identifier. Posts arrive with numeric or string ids
// depending on the backend version, so both are accepted and kept as text.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Timestamp accepts RFC 3339 as well as the zone-less layout the backend
// emits for server-local times, which it treats as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unsupported format %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Post is a community board message. Likes holds the usernames of the users
// who liked it; the server guarantees uniqueness.
type Post struct {
	ID        ID        `json:"id"`
	Title     string    `json:"titulo"`
	Body      string    `json:"conteudo"`
	Author    string    `json:"username"`
	CreatedAt Timestamp `json:"criadoEm"`
	Likes     []string  `json:"likes"`
	Replies   []Reply   `json:"replies"`
}

// LikedBy reports whether username is among the post's likers.
func (p Post) LikedBy(username string) bool {
	return username != "" && slices.Contains(p.Likes, username)
}

// Reply is an answer appended to a Post. Replies carry no id of their own;
// author and timestamp together identify one.
type Reply struct {
	Author    string    `json:"username"`
	Body      string    `json:"conteudo"`
	CreatedAt Timestamp `json:"criadoEm"`
}

// Key identifies a reply within its post.
func (r Reply) Key() string {
	return r.Author + "@" + r.CreatedAt.UTC().Format(time.RFC3339Nano)
}

// PostInput is the request body for creating or editing a post.
type PostInput struct {
	Title string `json:"Titulo"`
	Body  string `json:"Conteudo"`
}

// ReplyInput is the request body for replying to a post.
type ReplyInput struct {
	Body string `json:"Conteudo"`
}
