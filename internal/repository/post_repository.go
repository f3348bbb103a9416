package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"postboard/internal/models"
)

const postColumns = `post_id, author_id, text, name, avatar, likes, comments, created_at`

type PostRepositoryImpl struct {
	DB *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{DB: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	query := `
        INSERT INTO posts
        (post_id, author_id, text, name, avatar, likes, comments, created_at)
        VALUES
        (:post_id, :author_id, :text, :name, :avatar, :likes, :comments, :created_at)
    `

	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.Likes == nil {
		post.Likes = models.Likes{}
	}
	if post.Comments == nil {
		post.Comments = models.Comments{}
	}

	if _, err := r.DB.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE post_id = $1`

	var post models.Post
	if err := r.DB.GetContext(ctx, &post, query, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

func (r *PostRepositoryImpl) GetAll(ctx context.Context) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC`

	posts := []models.Post{}
	if err := r.DB.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

// Mutate locks the row for the lifetime of one transaction, applies fn and writes
// the embedded collections back. Nothing is written when fn fails or ctx ends first.
func (r *PostRepositoryImpl) Mutate(ctx context.Context, postID string, fn MutateFunc) (*models.Post, error) {
	var updated *models.Post

	err := r.withLockedPost(ctx, postID, func(tx *sqlx.Tx, post *models.Post) error {
		if err := fn(post); err != nil {
			return err
		}

		query := `UPDATE posts SET likes = $1, comments = $2 WHERE post_id = $3`
		if _, err := tx.ExecContext(ctx, query, post.Likes, post.Comments, post.PostID); err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}

		updated = post
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *PostRepositoryImpl) Delete(ctx context.Context, postID string, guard MutateFunc) error {
	return r.withLockedPost(ctx, postID, func(tx *sqlx.Tx, post *models.Post) error {
		if guard != nil {
			if err := guard(post); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE post_id = $1`, postID)
		if err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check deleted rows: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("post %s: %w", postID, ErrNotFound)
		}

		return nil
	})
}

func (r *PostRepositoryImpl) withLockedPost(ctx context.Context, postID string, fn func(tx *sqlx.Tx, post *models.Post) error) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + postColumns + ` FROM posts WHERE post_id = $1 FOR UPDATE`

	var post models.Post
	if err := tx.GetContext(ctx, &post, query, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("post %s: %w", postID, ErrNotFound)
		}
		return fmt.Errorf("failed to lock post: %w", err)
	}

	if err := fn(tx, &post); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
