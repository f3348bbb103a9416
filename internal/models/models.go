package models

import (
	"time"
)

// User is a registered identity. The password hash never leaves the server.
type User struct {
	UserID       string    `json:"userId" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Avatar       string    `json:"avatar" db:"avatar"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

type Like struct {
	UserID string `json:"userId"`
}

type Comment struct {
	CommentID string    `json:"id"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post carries its likes and comments embedded. Name and Avatar are copied from
// the author when the post is created and are not refreshed afterwards.
type Post struct {
	PostID    string    `json:"id" db:"post_id"`
	AuthorID  string    `json:"authorId" db:"author_id"`
	Text      string    `json:"text" db:"text"`
	Name      string    `json:"name" db:"name"`
	Avatar    string    `json:"avatar" db:"avatar"`
	Likes     Likes     `json:"likes" db:"likes"`
	Comments  Comments  `json:"comments" db:"comments"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Clone returns a deep copy so callers can mutate it without touching shared state.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Likes = append(Likes{}, p.Likes...)
	cp.Comments = append(Comments{}, p.Comments...)
	return &cp
}
