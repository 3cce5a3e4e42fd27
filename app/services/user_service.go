package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/propelyu/app/models"
	"github.com/shashiranjanraj/propelyu/app/repositories"
	"github.com/shashiranjanraj/propelyu/pkg/apperr"
	"github.com/shashiranjanraj/propelyu/pkg/auth"
	"github.com/shashiranjanraj/propelyu/pkg/rbac"
)

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
}

type UserService struct {
	users  repositories.UserRepository
	tokens *auth.Issuer
}

func NewUserService(users repositories.UserRepository, tokens *auth.Issuer) *UserService {
	return &UserService{users: users, tokens: tokens}
}

// Register creates a guest or vendor account. Admins cannot self-register.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Password != in.ConfirmPassword {
		return nil, apperr.InvalidInput("Passwords do not match.")
	}

	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = rbac.RoleGuest
	}
	if role == rbac.RoleAdmin {
		return nil, apperr.InvalidInput("Cannot register as admin. Admin role is assigned manually, please select a different role")
	}
	if !rbac.ValidRole(role) {
		return nil, apperr.InvalidInput("Unknown role %q", in.Role)
	}

	email := normalizeEmail(in.Email)
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("User already exist!")
	}

	if !auth.StrongPassword(in.Password) {
		return nil, apperr.InvalidInput("%s", auth.PasswordRequirements)
	}

	return s.create(ctx, in.Username, email, in.Password, role)
}

// CreateAdmin bypasses the self-registration rules. Used by the CLI only.
func (s *UserService) CreateAdmin(ctx context.Context, username, email, password string) (*models.User, error) {
	if !auth.StrongPassword(password) {
		return nil, apperr.InvalidInput("%s", auth.PasswordRequirements)
	}
	return s.create(ctx, username, normalizeEmail(email), password, rbac.RoleAdmin)
}

func (s *UserService) create(ctx context.Context, username, email, password, role string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash: %w", err)
	}

	u := &models.User{
		Username: strings.TrimSpace(username),
		Email:    email,
		Password: hash,
		Role:     role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("User already exist!")
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return u, nil
}

// Login checks the password and issues a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", storeErr(err, "login", "User does not exist!")
	}
	if !auth.CheckPassword(u.Password, password) {
		return "", apperr.Unauthorized("Incorrect email or password")
	}

	token, err := s.tokens.IssueToken(u.ID.Hex(), u.Role)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return token, nil
}

// Resolve loads the user a verified token refers to.
func (s *UserService) Resolve(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	if claims.ID == "" {
		return nil, apperr.Unauthorized("Token missing user id!")
	}
	u, err := s.users.FindByID(ctx, claims.ID)
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, repositories.ErrNotFound), apperr.KindOf(err) == apperr.KindUnprocessable:
		return nil, apperr.Unauthorized("Authenticated user missing from database!")
	default:
		return nil, fmt.Errorf("resolve user: %w", err)
	}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
