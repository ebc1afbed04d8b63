package server

import (
	"encoding/json"
	"net/http"

	"Bt1QAuth/config"
	"Bt1QAuth/core/auth"
	"Bt1QAuth/logger"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	authService *auth.Service
	cfg         *config.Config
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(authService *auth.Service, cfg *config.Config) *APIHandler {
	return &APIHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", logger.ErrorField(err))
	}
}

// unauthorized writes a 401 with the bearer challenge header. All token and
// credential failures share the same generic message.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, message, http.StatusUnauthorized)
}
