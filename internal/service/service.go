package service

import (
	"postboard/internal/repository"
)

type Service struct {
	Auth  AuthService
	Post  PostService
	Token TokenService
}

// NewService wires the services over one repository set. avatars may be nil.
func NewService(rep *repository.Repository, tokens TokenService, avatars AvatarResolver) *Service {
	return &Service{
		Auth:  NewAuthService(rep.User, tokens, avatars),
		Post:  NewPostService(rep.Post, rep.User, avatars),
		Token: tokens,
	}
}
