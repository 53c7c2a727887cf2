package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"coursemaster/apperr"
	"coursemaster/logger"
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/store"
	"coursemaster/utils"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users     store.UserStore
	mailer    utils.Mailer
	jwtKey    string
	saltRound int
	log       *logger.Logger
}

func NewAuthService(users store.UserStore, mailer utils.Mailer, jwtKey string, saltRound int, log *logger.Logger) *AuthService {
	if saltRound < bcrypt.MinCost || saltRound > bcrypt.MaxCost {
		saltRound = bcrypt.DefaultCost
	}
	return &AuthService{users: users, mailer: mailer, jwtKey: jwtKey, saltRound: saltRound, log: log}
}

type RegisterInput struct {
	Name      string
	Email     string
	Phone     string
	Password  string
	AvatarURL string
}

// Register creates a user with the default role and returns a session token.
// The role is never taken from the request.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.saltRound)
	if err != nil {
		s.log.Error("Password hashing failed", "error", err)
		return nil, "", apperr.Upstream("Registration failed", err)
	}

	user := &models.User{
		Name:             strings.TrimSpace(in.Name),
		Email:            strings.TrimSpace(in.Email),
		Phone:            in.Phone,
		Avatar:           in.AvatarURL,
		Password:         string(hash),
		Role:             models.RoleUser,
		Status:           "active",
		PurchasedCourses: []models.PurchasedCourse{},
		CreatedAt:        time.Now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, "", apperr.Conflict("User already exists")
		}
		s.log.Error("Failed to create user", "email", user.Email, "error", err)
		return nil, "", apperr.Upstream("Registration failed", err)
	}

	token, err := middleware.GenerateJWT(s.jwtKey, user.Email, user.Role)
	if err != nil {
		s.log.Error("Failed to sign token", "error", err)
		return nil, "", apperr.Upstream("Registration failed", err)
	}

	s.mailer.SendWelcomeEmail(user.Email, user.Name)
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", apperr.NotFound("User not found")
		}
		s.log.Error("Failed to load user", "email", email, "error", err)
		return nil, "", apperr.Upstream("Login failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperr.New(apperr.KindUnauthenticated, "Invalid password")
	}

	token, err := middleware.GenerateJWT(s.jwtKey, user.Email, user.Role)
	if err != nil {
		s.log.Error("Failed to sign token", "error", err)
		return nil, "", apperr.Upstream("Login failed", err)
	}
	return user, token, nil
}

// Me loads the caller's full record.
func (s *AuthService) Me(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		s.log.Error("Failed to load user", "email", email, "error", err)
		return nil, apperr.Upstream("Failed to load user", err)
	}
	return user, nil
}
