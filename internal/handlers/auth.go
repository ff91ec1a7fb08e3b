package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/seaportal/apiserver/internal/services"
	"github.com/seaportal/apiserver/internal/session"
	"github.com/seaportal/apiserver/types"
)

// CookieConfig controls the session cookie set on login.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler provides login, signup and session endpoints.
type AuthHandler struct {
	login    *services.LoginService
	users    *services.UserService
	sessions *session.Manager
	cookie   CookieConfig
	validate *validator.Validate
	log      *zap.SugaredLogger
}

func NewAuthHandler(
	login *services.LoginService,
	users *services.UserService,
	sessions *session.Manager,
	cookie CookieConfig,
	log *zap.SugaredLogger,
) *AuthHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &AuthHandler{
		login:    login,
		users:    users,
		sessions: sessions,
		cookie:   cookie,
		validate: validator.New(),
		log:      log,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/login", handler.Login)
	r.Post("/signup", handler.Signup)
	r.Get("/check-session", handler.CheckSession)
	r.Post("/logout", handler.Logout)
}

// LoginRequest carries the credentials. An empty password is not rejected
// here; it fails verification like any other wrong password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type MigrationInfo struct {
	Migrated bool   `json:"migrated"`
	Message  string `json:"message"`
}

type LoginResponse struct {
	User          types.SessionUser `json:"user"`
	IsLocalUser   bool              `json:"isLocalUser"`
	Message       string            `json:"message"`
	MigrationInfo *MigrationInfo    `json:"migrationInfo,omitempty"`
	Token         string            `json:"token"`
}

// DeniedResponse is the 403 body of a login the policy refused.
type DeniedResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	UserType string `json:"userType,omitempty"`
	UserRole string `json:"userRole,omitempty"`
}

type SignupResponse struct {
	Message string     `json:"message"`
	User    types.User `json:"user"`
}

type SessionResponse struct {
	User *types.SessionUser `json:"user"`
}

// Login authenticates the user, migrating from the legacy directory when
// needed, and issues a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	result, err := h.login.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeLoginError(w, err)
		return
	}

	token, _, err := h.sessions.Issue(r.Context(), result)
	if err != nil {
		h.log.Errorw("session issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	h.setCookie(w, token, int(h.sessions.TTL().Seconds()))

	resp := LoginResponse{
		User:        result.User,
		IsLocalUser: result.IsLocalUser,
		Message:     "Login successful",
		Token:       token,
	}
	if result.Migrated {
		resp.MigrationInfo = &MigrationInfo{Migrated: true, Message: result.MigrationMessage}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Signup creates a local visitor account.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		h.log.Errorw("signup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, SignupResponse{Message: "Signup successful.", User: user})
}

// CheckSession returns the session user or null.
func (h *AuthHandler) CheckSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, SessionResponse{})
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{User: &sess.User})
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := requestToken(r, h.cookie.Name)
	if err != nil {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "No session to destroy"})
		return
	}
	if err := h.sessions.Revoke(r.Context(), token); err != nil {
		h.log.Errorw("session revoke failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to logout")
		return
	}
	h.setCookie(w, "", -1)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeLoginError(w http.ResponseWriter, err error) {
	switch services.DenialReason(err) {
	case services.ReasonInvalidCredentials:
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case services.ReasonAccountInactive:
		writeError(w, http.StatusForbidden, "ACCOUNT IS INACTIVE")
	case services.ReasonIneligible:
		resp := DeniedResponse{Error: "Access denied", Message: "Your account is not eligible to access this system"}
		var ineligible *services.IneligibleError
		if errors.As(err, &ineligible) {
			resp.UserType = ineligible.UserType
			resp.UserRole = ineligible.UserRole
			resp.Message = fmt.Sprintf("Your account type (%s) and role (%s) are not eligible to access this system",
				ineligible.UserType, ineligible.UserRole)
		}
		writeJSON(w, http.StatusForbidden, resp)
	case services.ReasonNotInLegacyDirectory:
		writeJSON(w, http.StatusForbidden, DeniedResponse{
			Error:   "Access denied",
			Message: "Account not found in authorization system",
		})
	default:
		if errors.Is(err, services.ErrMigrationFailed) {
			writeError(w, http.StatusInternalServerError, "Migration failed")
			return
		}
		writeError(w, http.StatusInternalServerError, "Authentication service error")
	}
}
