package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"postboard/internal/models"
)

type memoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (r *memoryUserRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(user.Email)
	if _, exists := r.byEmail[email]; exists {
		return fmt.Errorf("user %s: %w", user.Email, ErrDuplicateEmail)
	}

	user.UserID = uuid.New().String()
	user.Email = email
	user.PasswordHash = string(hashedPassword)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	stored := *user
	r.byID[user.UserID] = &stored
	r.byEmail[email] = user.UserID
	return nil
}

func (r *memoryUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	cp := *user
	return &cp, nil
}

func (r *memoryUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	id, ok := r.byEmail[normalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
	}

	return r.GetUserByID(ctx, id)
}

type postRecord struct {
	mu      sync.Mutex
	post    *models.Post
	deleted bool
}

// memoryPostRepository keeps one lock per post. The registry lock only guards
// the map itself and is never held while waiting on a record.
type memoryPostRepository struct {
	mu      sync.RWMutex
	records map[string]*postRecord
}

func NewMemoryPostRepository() PostRepository {
	return &memoryPostRepository{records: make(map[string]*postRecord)}
}

func (r *memoryPostRepository) record(postID string) (*postRecord, error) {
	r.mu.RLock()
	rec, ok := r.records[postID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}
	return rec, nil
}

func (r *memoryPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[post.PostID]; exists {
		return fmt.Errorf("post %s already exists", post.PostID)
	}
	r.records[post.PostID] = &postRecord{post: post.Clone()}
	return nil
}

func (r *memoryPostRepository) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec, err := r.record(postID)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}
	return rec.post.Clone(), nil
}

func (r *memoryPostRepository) GetAll(ctx context.Context) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	records := make([]*postRecord, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec)
	}
	r.mu.RUnlock()

	posts := make([]models.Post, 0, len(records))
	for _, rec := range records {
		rec.mu.Lock()
		if !rec.deleted {
			posts = append(posts, *rec.post.Clone())
		}
		rec.mu.Unlock()
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].PostID > posts[j].PostID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	return posts, nil
}

func (r *memoryPostRepository) Mutate(ctx context.Context, postID string, fn MutateFunc) (*models.Post, error) {
	rec, err := r.record(postID)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.deleted {
		return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	draft := rec.post.Clone()
	if err := fn(draft); err != nil {
		return nil, err
	}

	rec.post = draft
	return draft.Clone(), nil
}

func (r *memoryPostRepository) Delete(ctx context.Context, postID string, guard MutateFunc) error {
	rec, err := r.record(postID)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.deleted {
		return fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if guard != nil {
		if err := guard(rec.post.Clone()); err != nil {
			return err
		}
	}

	rec.deleted = true

	r.mu.Lock()
	delete(r.records, postID)
	r.mu.Unlock()

	return nil
}
