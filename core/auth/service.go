package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"Bt1QAuth/logger"
	"Bt1QAuth/model"
	"Bt1QAuth/repository"
)

// Service orchestrates registration, login and token-based identity
// resolution over the user store, the password hasher and the token issuer.
type Service struct {
	users  repository.UserRepository
	tokens *TokenIssuer
}

// NewService creates an auth Service.
func NewService(users repository.UserRepository, tokens *TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Tokens exposes the token issuer, e.g. for reporting the configured expiry.
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

// Register creates a new user after checking username and email uniqueness.
// The pre-checks give specific errors on the fast path; the store's own
// unique constraint remains authoritative under concurrent registration and
// yields the same sentinels.
func (s *Service) Register(ctx context.Context, username, email, password, fullName string) (*model.User, error) {
	if existing, err := s.users.GetUserByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if existing != nil {
		return nil, repository.ErrDuplicateUsername
	}

	if existing, err := s.users.GetUserByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if existing != nil {
		return nil, repository.ErrDuplicateEmail
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to process password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if fullName != "" {
		user.FullName = sql.NullString{String: fullName, Valid: true}
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("[Register] 用户注册成功",
		logger.String("username", user.Username),
		logger.String("userId", user.ID))
	return user, nil
}

// Login verifies the credentials and issues a bearer token. An unknown
// username and a wrong password both return ErrInvalidCredentials with no
// distinguishing signal. A failure to persist the last-login timestamp is
// logged and does not fail the login.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Duration, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", 0, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !VerifyPassword(password, user.PasswordHash) {
		logger.Warn("[Login] 登录失败", logger.String("username", username))
		return "", 0, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		// Best effort only; the login still succeeds.
		logger.Warn("[Login] 更新最后登录时间失败",
			logger.String("userId", user.ID),
			logger.ErrorField(err))
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info("[Login] 登录成功", logger.String("username", user.Username))
	return token, s.tokens.TTL(), nil
}

// ResolveUser decodes a presented token and re-resolves the user from the
// store, so the returned record reflects current state rather than the
// claims. Any failure, including a token for a user that no longer exists,
// is ErrUnauthorized.
func (s *Service) ResolveUser(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.tokens.ParseToken(tokenString)
	if err != nil {
		logger.Warn("[Auth] Token验证失败", logger.ErrorField(err))
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		logger.Error("[Auth] 查询用户失败",
			logger.String("userId", claims.UserID),
			logger.ErrorField(err))
		return nil, ErrUnauthorized
	}
	if user == nil {
		logger.Warn("[Auth] Token指向的用户不存在", logger.String("userId", claims.UserID))
		return nil, ErrUnauthorized
	}

	return user, nil
}
