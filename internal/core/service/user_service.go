package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rl1809/pizzan/internal/core/domain"
	"github.com/rl1809/pizzan/internal/port"
)

type UserService struct {
	users port.UserRepository
}

func NewUserService(users port.UserRepository) *UserService {
	return &UserService{users: users}
}

// Create registers a user. Duplicate emails are accepted.
func (s *UserService) Create(ctx context.Context, user domain.User) (domain.InsertResult, error) {
	if user.Email == "" {
		return domain.InsertResult{}, fmt.Errorf("%w: email", ErrMissingField)
	}
	user.ID = ""
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	result, err := s.users.InsertUser(ctx, user)
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("insert user: %w", err)
	}
	return result, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *UserService) GetByAdminID(ctx context.Context, adminID string) (*domain.User, error) {
	if adminID == "" {
		return nil, domain.ErrNotFound
	}
	return s.users.GetUserByAdminID(ctx, adminID)
}
