package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"postboard/internal/models"
	"postboard/internal/repository"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}

// AvatarResolver turns a stored avatar reference into a URL clients can fetch.
type AvatarResolver interface {
	AvatarURL(ctx context.Context, ref string) (string, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenService
	avatars  AvatarResolver
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenService, avatars AvatarResolver) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		avatars:  avatars,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareDummy burns roughly the same time as a real password check.
func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("postboard-placeholder"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			compareDummy(password)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}

func (s *authService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownIdentity
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	user.Avatar = resolveAvatar(ctx, s.avatars, user.Avatar)
	return user, nil
}

// resolveAvatar falls back to the raw reference when there is no resolver or it fails.
func resolveAvatar(ctx context.Context, avatars AvatarResolver, ref string) string {
	if avatars == nil || ref == "" {
		return ref
	}
	url, err := avatars.AvatarURL(ctx, ref)
	if err != nil {
		return ref
	}
	return url
}
