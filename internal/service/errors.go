package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidID       = errors.New("invalid id")
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)
	ErrForbidden       = errors.New("not authorized")
	ErrAlreadyLiked    = errors.New("post already liked")
	ErrNotLiked        = errors.New("post has not yet been liked")
	ErrEmptyText       = errors.New("text is required")
	ErrUnknownIdentity = errors.New("identity not found")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredential  = errors.New("no credential supplied")
	ErrMalformedToken     = errors.New("malformed token")
	ErrInvalidSignature   = errors.New("invalid token signature")
	ErrTokenExpired       = errors.New("token expired")
)
