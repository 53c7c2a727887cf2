package services

import (
	"context"
	"errors"

	"coursemaster/apperr"
	"coursemaster/logger"
	"coursemaster/models"
	"coursemaster/store"
)

type UserService struct {
	users store.UserStore
	log   *logger.Logger
}

func NewUserService(users store.UserStore, log *logger.Logger) *UserService {
	return &UserService{users: users, log: log}
}

// UpdateProfile applies the non-empty fields of update and returns the fresh record.
func (s *UserService) UpdateProfile(ctx context.Context, email string, update models.ProfileUpdate) (*models.User, error) {
	if err := s.users.UpdateProfile(ctx, email, update); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		s.log.Error("Profile update failed", "email", email, "error", err)
		return nil, apperr.Upstream("Profile update failed", err)
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to reload user", "email", email, "error", err)
		return nil, apperr.Upstream("Profile update failed", err)
	}
	return user, nil
}

func (s *UserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, apperr.NotFound("User not found")
		}
		s.log.Error("Failed to load user", "email", email, "error", err)
		return false, apperr.Upstream("Failed to check role", err)
	}
	return user.IsAdmin(), nil
}
