package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Likes is the like set of a post, newest first. Entries are keyed by user id.
type Likes []Like

func (l Likes) Has(userID string) bool {
	for _, like := range l {
		if like.UserID == userID {
			return true
		}
	}
	return false
}

// Add puts the user at the head of the set. It is a no-op when the user is already present.
func (l Likes) Add(userID string) Likes {
	if l.Has(userID) {
		return l
	}
	out := make(Likes, 0, len(l)+1)
	out = append(out, Like{UserID: userID})
	return append(out, l...)
}

// Remove drops the entry matching userID. The second result is false when nothing matched.
func (l Likes) Remove(userID string) (Likes, bool) {
	out := make(Likes, 0, len(l))
	removed := false
	for _, like := range l {
		if like.UserID == userID {
			removed = true
			continue
		}
		out = append(out, like)
	}
	return out, removed
}

func (l Likes) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Like(l))
}

func (l Likes) Value() (driver.Value, error) {
	b, err := l.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *Likes) Scan(src any) error {
	return scanJSON(src, (*[]Like)(l))
}

// Comments is the comment thread of a post, newest first. Entries are keyed by comment id.
type Comments []Comment

func (c Comments) Find(commentID string) (Comment, bool) {
	for _, comment := range c {
		if comment.CommentID == commentID {
			return comment, true
		}
	}
	return Comment{}, false
}

func (c Comments) Prepend(comment Comment) Comments {
	out := make(Comments, 0, len(c)+1)
	out = append(out, comment)
	return append(out, c...)
}

// Remove drops the comment with the given id, whatever its position.
func (c Comments) Remove(commentID string) (Comments, bool) {
	out := make(Comments, 0, len(c))
	removed := false
	for _, comment := range c {
		if comment.CommentID == commentID {
			removed = true
			continue
		}
		out = append(out, comment)
	}
	return out, removed
}

func (c Comments) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Comment(c))
}

func (c Comments) Value() (driver.Value, error) {
	b, err := c.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *Comments) Scan(src any) error {
	return scanJSON(src, (*[]Comment)(c))
}

func scanJSON[T any](src any, dst *[]T) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*dst = []T{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for JSON column", src)
	}

	out := []T{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode JSON column: %w", err)
	}
	*dst = out
	return nil
}
