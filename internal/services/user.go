package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/seaportal/apiserver/internal/auth"
	"github.com/seaportal/apiserver/internal/store"
	"github.com/seaportal/apiserver/types"
)

// UserService encapsulates local user use-cases.
type UserService struct {
	repo LocalStore
}

func NewUserService(repo LocalStore) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Signup registers a new local visitor account. The display name defaults to
// the local part of the email.
func (s *UserService) Signup(ctx context.Context, email, password string) (types.User, error) {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return types.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := auth.HashSignupPassword(password)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	name, _, _ := strings.Cut(email, "@")
	user, err := s.repo.CreateWithAccount(ctx, types.User{
		Email: email,
		Name:  name,
		Sex:   types.SexMale,
		Role:  types.RoleVisitor,
	}, types.Account{
		Email:        email,
		PasswordHash: hash,
		Status:       types.AccountActive,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, err
	}
	return user, nil
}
