package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/seaportal/apiserver/internal/services"
	"github.com/seaportal/apiserver/types"
)

// PingFunc checks connectivity to a backing store.
type PingFunc func(ctx context.Context) error

// MigrationHandler exposes the admin migration endpoints.
type MigrationHandler struct {
	migration  *services.MigrationService
	pingLegacy PingFunc
	validate   *validator.Validate
	log        *zap.SugaredLogger
}

func NewMigrationHandler(migration *services.MigrationService, pingLegacy PingFunc, log *zap.SugaredLogger) *MigrationHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &MigrationHandler{
		migration:  migration,
		pingLegacy: pingLegacy,
		validate:   validator.New(),
		log:        log,
	}
}

// MigrationRouter registers admin migration routes. Every route requires a
// SUPERADMIN session.
func MigrationRouter(r chi.Router, handler *MigrationHandler) {
	r.Use(RequireAdmin)

	r.Get("/status/{email}", handler.Status)
	r.Get("/needs-migration/{email}", handler.NeedsMigration)
	r.Post("/migrate-user", handler.MigrateUser)
	r.Post("/bulk-migrate", handler.BulkMigrate)
	r.Get("/migrated-users", handler.MigratedUsers)
	r.Get("/test-connection", handler.TestConnection)
}

type MigrateUserRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type BulkMigrateRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,dive,required"`
}

type StatusResponse struct {
	Email string `json:"email"`
	services.MigrationStatus
}

type NeedsMigrationResponse struct {
	Email          string `json:"email"`
	NeedsMigration bool   `json:"needsMigration"`
}

type MigrateUserResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	User    *types.User `json:"user,omitempty"`
}

type BulkMigrateResponse struct {
	Success bool `json:"success"`
	services.BulkResult
}

type MigratedUser struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	LegacyUserID  *string    `json:"legacyUserId"`
	MigrationDate *time.Time `json:"migrationDate"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type MigratedUsersResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Users   []MigratedUser `json:"users"`
}

type ConnectionResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
	ConnectionTest string `json:"connectionTest,omitempty"`
}

func (h *MigrationHandler) Status(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(chi.URLParam(r, "email"))

	status, err := h.migration.Status(r.Context(), email)
	if err != nil {
		h.log.Errorw("migration status failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load migration status")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Email: email, MigrationStatus: status})
}

func (h *MigrationHandler) NeedsMigration(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(chi.URLParam(r, "email"))

	needs, err := h.migration.NeedsMigration(r.Context(), email)
	if err != nil {
		h.log.Errorw("needs-migration check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check migration")
		return
	}
	writeJSON(w, http.StatusOK, NeedsMigrationResponse{Email: email, NeedsMigration: needs})
}

func (h *MigrationHandler) MigrateUser(w http.ResponseWriter, r *http.Request) {
	var req MigrateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.migration.MigrateWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLegacyAuthFailed):
			writeError(w, http.StatusUnauthorized, "Invalid legacy credentials")
		case errors.Is(err, services.ErrAuthService):
			h.log.Errorw("legacy directory unavailable", "error", err)
			writeError(w, http.StatusInternalServerError, "Authentication service error")
		default:
			writeJSON(w, http.StatusBadRequest, MigrateUserResponse{
				Error:   services.MigrationErrorCode(err),
				Message: err.Error(),
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, MigrateUserResponse{
		Success: true,
		Message: "User successfully migrated from legacy directory",
		User:    &user,
	})
}

func (h *MigrationHandler) BulkMigrate(w http.ResponseWriter, r *http.Request) {
	var req BulkMigrateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Emails array is required")
		return
	}
	if len(req.Emails) > services.MaxBulkMigrate {
		writeError(w, http.StatusBadRequest, services.ErrBulkLimit.Error())
		return
	}

	result, err := h.migration.BulkMigrate(r.Context(), req.Emails)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, BulkMigrateResponse{Success: true, BulkResult: result})
}

func (h *MigrationHandler) MigratedUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.migration.ListMigrated(r.Context())
	if err != nil {
		h.log.Errorw("list migrated users failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list migrated users")
		return
	}

	out := make([]MigratedUser, 0, len(users))
	for _, u := range users {
		out = append(out, MigratedUser{
			ID:            u.ID,
			Email:         u.Email,
			Name:          u.Name,
			LegacyUserID:  u.LegacyUserID,
			MigrationDate: u.MigrationDate,
			CreatedAt:     u.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, MigratedUsersResponse{Success: true, Count: len(out), Users: out})
}

func (h *MigrationHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	if h.pingLegacy == nil {
		writeJSON(w, http.StatusInternalServerError, ConnectionResponse{Error: "Legacy directory not configured"})
		return
	}
	if err := h.pingLegacy(r.Context()); err != nil {
		h.log.Errorw("legacy directory ping failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ConnectionResponse{Error: "Failed to connect to legacy directory"})
		return
	}
	writeJSON(w, http.StatusOK, ConnectionResponse{
		Success:        true,
		Message:        "Successfully connected to legacy directory",
		ConnectionTest: "passed",
	})
}
