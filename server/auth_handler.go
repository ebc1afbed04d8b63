package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"Bt1QAuth/core/auth"
	"Bt1QAuth/logger"
	"Bt1QAuth/model"
	"Bt1QAuth/repository"
)

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// TokenResponse represents a successful token grant
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	TokenType        string `json:"tokenType"`
	ExpiresInSeconds int    `json:"expiresInSeconds"`
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validateRegisterRequest(req *RegisterRequest) string {
	if n := utf8.RuneCountInString(req.Username); n < 3 || n > 100 {
		return "Username must be between 3 and 100 characters"
	}
	if !emailPattern.MatchString(req.Email) {
		return "Invalid email address"
	}
	if req.Password == "" {
		return "Password is required"
	}
	return ""
}

// RegisterHandler handles user registration requests
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("[Register] 解析请求体失败", logger.ErrorField(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if msg := validateRegisterRequest(&req); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			logger.Warn("[Register] 用户名已存在", logger.String("username", req.Username))
			http.Error(w, "Username already registered", http.StatusBadRequest)
		case errors.Is(err, repository.ErrDuplicateEmail):
			logger.Warn("[Register] 邮箱已存在", logger.String("email", req.Email))
			http.Error(w, "Email already registered", http.StatusBadRequest)
		default:
			logger.Error("[Register] 创建用户失败", logger.ErrorField(err))
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, user.Public())
}

// TokenHandler handles the form-encoded credential grant and returns a
// bearer token on success.
func (h *APIHandler) TokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	token, ttl, err := h.authService.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			unauthorized(w, "Incorrect username or password")
			return
		}
		logger.Error("[Token] 登录处理失败", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken:      token,
		TokenType:        "bearer",
		ExpiresInSeconds: int(ttl.Seconds()),
	})
}

// MeHandler returns the authenticated user's profile.
func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := GetCurrentUserFromContext(r.Context())
	if err != nil {
		unauthorized(w, "Could not validate credentials")
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// AuthMiddleware resolves the bearer token into a current user and stores it
// in the request context. Every failure path returns the same 401.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Could not validate credentials")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(w, "Could not validate credentials")
			return
		}

		user, err := h.authService.ResolveUser(r.Context(), parts[1])
		if err != nil {
			unauthorized(w, "Could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), "currentUser", user)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetCurrentUserFromContext extracts the resolved user from the request context
func GetCurrentUserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value("currentUser").(*model.User)
	if !ok {
		return nil, fmt.Errorf("current user not found in context")
	}
	return user, nil
}
