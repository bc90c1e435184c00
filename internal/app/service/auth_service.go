package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"harf_sayi/internal/common"
	"harf_sayi/internal/common/security"
	"harf_sayi/internal/domain/model"
	"harf_sayi/internal/domain/repository"
)

// Account is a fixed-credential user guaranteed to exist at startup.
type Account struct {
	Username string
	Password string
	Role     string
}

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *security.TokenIssuer
	defaults []Account
}

func NewAuthService(userRepo repository.UserRepository, tokens *security.TokenIssuer, defaults ...Account) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, defaults: defaults}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token,omitempty"`
}

// Bootstrap reports the outcome of EnsureDefaultUsers.
type Bootstrap struct {
	Users   []*model.User
	Created int
}

// EnsureDefaultUsers creates each default account that does not exist yet.
// Existing accounts are left untouched, so repeated calls insert nothing.
func (s *AuthService) EnsureDefaultUsers(ctx context.Context) (*Bootstrap, error) {
	out := &Bootstrap{}
	for _, acct := range s.defaults {
		user, created, err := s.ensureUser(ctx, acct)
		if err != nil {
			return nil, fmt.Errorf("ensure default user %q: %w", acct.Username, err)
		}
		if created {
			out.Created++
			slog.Info("default user created", "username", user.Username, "role", user.Role)
		}
		out.Users = append(out.Users, user)
	}
	return out, nil
}

func (s *AuthService) ensureUser(ctx context.Context, acct Account) (*model.User, bool, error) {
	existing, err := s.userRepo.FindByUsername(ctx, acct.Username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}

	hashed, err := security.HashPassword(acct.Password)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &model.User{Username: acct.Username, Password: hashed, Role: acct.Role}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			// Another process created it between the lookup and the insert.
			existing, err := s.userRepo.FindByUsername(ctx, acct.Username)
			return existing, false, err
		}
		return nil, false, err
	}
	return user, true, nil
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	_, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err == nil {
		return nil, fmt.Errorf("%w: username is already taken", common.ErrConflict)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username: req.Username,
		Password: hashedPassword,
		Role:     model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, fmt.Errorf("%w: username is already taken", common.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.respond(user)
}

// Authenticate returns the user whose username and password both match
// exactly. Unknown users and wrong passwords yield the same error.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !security.CheckPassword(password, user.Password) {
		return nil, errInvalidCredentials
	}
	return user, nil
}

var errInvalidCredentials = fmt.Errorf("%w: invalid username or password", common.ErrUnauthorized)

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	user, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return s.respond(user)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *AuthService) respond(user *model.User) (*AuthResponse, error) {
	resp := &AuthResponse{ID: user.ID, Username: user.Username, Role: user.Role}
	if s.tokens != nil {
		token, err := s.tokens.Generate(user.ID, user.Role)
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}
		resp.Token = token
	}
	return resp, nil
}
