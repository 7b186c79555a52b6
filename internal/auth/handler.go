package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/redmonkez12/vision-api/internal/httputil"
	"github.com/redmonkez12/vision-api/internal/logging"
	"github.com/redmonkez12/vision-api/internal/user"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// VerifyResponse is returned by token verification
type VerifyResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

func newUserResponse(u *user.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Signup handles account creation
// @Summary      Create an account
// @Description  Register with name, email and password. Returns a signed token for the new account.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup details"
// @Success      200 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or user already exists"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	result, err := h.service.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		var validationErr *ValidationError
		switch {
		case errors.As(err, &validationErr):
			logger.Warn("signup failed: validation error", "error", err.Error())
			httputil.RespondErrorWithCode(w, validationErr.Message, validationErr.Code, http.StatusBadRequest)
		case errors.Is(err, user.ErrDuplicateEmail):
			logger.Warn("signup failed: email already exists")
			httputil.RespondErrorWithCode(w, "User already exists", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
		default:
			logger.Error("signup failed", "error", err.Error())
			httputil.RespondErrorWithCode(w, "Internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user signed up", "user_id", result.User.ID)

	httputil.RespondJSON(w, AuthResponse{
		Success: true,
		Token:   result.Token,
		User:    newUserResponse(result.User),
	}, http.StatusOK)
}

// Login handles user login
// @Summary      Log in
// @Description  Authenticate with email and password. Returns a signed token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body or missing fields"
// @Failure      401 {object} httputil.ErrorResponse "Invalid email or password"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var validationErr *ValidationError
		switch {
		case errors.As(err, &validationErr):
			logger.Warn("login failed: validation error", "error", err.Error())
			httputil.RespondErrorWithCode(w, validationErr.Message, validationErr.Code, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidCredentials):
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, "Invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		default:
			logger.Error("login failed", "error", err.Error())
			httputil.RespondErrorWithCode(w, "Internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user logged in", "user_id", result.User.ID)

	httputil.RespondJSON(w, AuthResponse{
		Success: true,
		Token:   result.Token,
		User:    newUserResponse(result.User),
	}, http.StatusOK)
}

// Verify returns the account behind the presented token
// @Summary      Verify token
// @Description  Check the bearer token and return the user it belongs to
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} VerifyResponse
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid token"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/verify [get]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		logger.Error("verify called without an authenticated identity")
		httputil.RespondErrorWithCode(w, "Unauthorized", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	logger = logger.WithFields(map[string]any{"user_id": identity.UserID})

	u, err := h.service.CurrentUser(r.Context(), identity)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("verify failed: user not found")
			httputil.RespondErrorWithCode(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("verify failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, VerifyResponse{
		Success: true,
		User:    newUserResponse(u),
	}, http.StatusOK)
}
