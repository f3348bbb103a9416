package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"postboard/internal/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("duplicate email")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// MutateFunc edits a private copy of a post. Returning an error discards the edit.
type MutateFunc func(post *models.Post) error

// PostRepository persists posts together with their embedded likes and comments.
// Mutate and Delete run their callback while holding exclusive access to the
// record, so concurrent writers on one post are serialized.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	GetAll(ctx context.Context) ([]models.Post, error)
	Mutate(ctx context.Context, postID string, fn MutateFunc) (*models.Post, error)
	Delete(ctx context.Context, postID string, guard MutateFunc) error
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Repository struct {
	User UserRepository
	Post PostRepository
	DB   Pinger
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User: NewUserRepository(db),
		Post: NewPostRepository(db),
		DB:   db,
	}
}

func NewMemoryRepository() *Repository {
	return &Repository{
		User: NewMemoryUserRepository(),
		Post: NewMemoryPostRepository(),
		DB:   memoryPinger{},
	}
}

type memoryPinger struct{}

func (memoryPinger) PingContext(ctx context.Context) error {
	return ctx.Err()
}
