package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"postboard/internal/models"
	"postboard/internal/repository"
)

type PostService interface {
	CreatePost(ctx context.Context, authorID, text string) (*models.Post, error)
	GetPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	DeletePost(ctx context.Context, requesterID, postID string) error
	LikePost(ctx context.Context, userID, postID string) (models.Likes, error)
	UnlikePost(ctx context.Context, userID, postID string) (models.Likes, error)
	AddComment(ctx context.Context, userID, postID, text string) (models.Comments, error)
	DeleteComment(ctx context.Context, userID, postID, commentID string) (models.Comments, error)
}

type postService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	avatars  AvatarResolver
	now      func() time.Time
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, avatars AvatarResolver) PostService {
	return &postService{
		postRepo: postRepo,
		userRepo: userRepo,
		avatars:  avatars,
		now:      time.Now,
	}
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func (p *postService) identity(ctx context.Context, userID string) (*models.User, error) {
	user, err := p.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownIdentity
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// present returns a copy of post with avatar references turned into fetchable
// URLs. Stored records keep the raw reference since resolved URLs may expire.
func (p *postService) present(ctx context.Context, post *models.Post) *models.Post {
	out := post.Clone()
	out.Avatar = resolveAvatar(ctx, p.avatars, post.Avatar)
	out.Comments = p.presentComments(ctx, post.Comments)
	return out
}

func (p *postService) presentComments(ctx context.Context, comments models.Comments) models.Comments {
	out := make(models.Comments, len(comments))
	for i, comment := range comments {
		comment.Avatar = resolveAvatar(ctx, p.avatars, comment.Avatar)
		out[i] = comment
	}
	return out
}

func mapStoreError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (p *postService) CreatePost(ctx context.Context, authorID, text string) (*models.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	author, err := p.identity(ctx, authorID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		PostID:    uuid.New().String(),
		AuthorID:  author.UserID,
		Text:      text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		Likes:     models.Likes{},
		Comments:  models.Comments{},
		CreatedAt: p.now().UTC(),
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return p.present(ctx, post), nil
}

func (p *postService) GetPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := p.postRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	out := make([]models.Post, 0, len(posts))
	for i := range posts {
		out = append(out, *p.present(ctx, &posts[i]))
	}
	return out, nil
}

func (p *postService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	if err := validateID(postID); err != nil {
		return nil, err
	}

	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return p.present(ctx, post), nil
}

func (p *postService) DeletePost(ctx context.Context, requesterID, postID string) error {
	if err := validateID(postID); err != nil {
		return err
	}

	err := p.postRepo.Delete(ctx, postID, func(post *models.Post) error {
		if !CanMutate(requesterID, post.AuthorID) {
			return ErrForbidden
		}
		return nil
	})
	return mapStoreError(err)
}

func (p *postService) LikePost(ctx context.Context, userID, postID string) (models.Likes, error) {
	if err := validateID(postID); err != nil {
		return nil, err
	}

	post, err := p.postRepo.Mutate(ctx, postID, func(post *models.Post) error {
		if post.Likes.Has(userID) {
			return ErrAlreadyLiked
		}
		post.Likes = post.Likes.Add(userID)
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return post.Likes, nil
}

func (p *postService) UnlikePost(ctx context.Context, userID, postID string) (models.Likes, error) {
	if err := validateID(postID); err != nil {
		return nil, err
	}

	post, err := p.postRepo.Mutate(ctx, postID, func(post *models.Post) error {
		likes, removed := post.Likes.Remove(userID)
		if !removed {
			return ErrNotLiked
		}
		post.Likes = likes
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return post.Likes, nil
}

func (p *postService) AddComment(ctx context.Context, userID, postID, text string) (models.Comments, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if err := validateID(postID); err != nil {
		return nil, err
	}

	// The identity lookup stays outside the record lock.
	author, err := p.identity(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		CommentID: uuid.New().String(),
		PostID:    postID,
		AuthorID:  author.UserID,
		Text:      text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: p.now().UTC(),
	}

	post, err := p.postRepo.Mutate(ctx, postID, func(post *models.Post) error {
		post.Comments = post.Comments.Prepend(comment)
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return p.presentComments(ctx, post.Comments), nil
}

func (p *postService) DeleteComment(ctx context.Context, userID, postID, commentID string) (models.Comments, error) {
	if err := validateID(postID); err != nil {
		return nil, err
	}
	if err := validateID(commentID); err != nil {
		return nil, ErrCommentNotFound
	}

	post, err := p.postRepo.Mutate(ctx, postID, func(post *models.Post) error {
		comment, ok := post.Comments.Find(commentID)
		if !ok {
			return ErrCommentNotFound
		}
		if !CanMutate(userID, comment.AuthorID) {
			return ErrForbidden
		}
		post.Comments, _ = post.Comments.Remove(commentID)
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return p.presentComments(ctx, post.Comments), nil
}
