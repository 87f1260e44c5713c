package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pixelpalette/backend/internal/accounts"
	"github.com/pixelpalette/backend/internal/api"
	"github.com/pixelpalette/backend/internal/config"
	"github.com/pixelpalette/backend/internal/events"
)

type Handler struct {
	authSvc     *Service
	accountsSvc *accounts.Service
	publisher   *events.Publisher
	credits     config.CreditsConfig
	validate    *validator.Validate
}

func NewHandler(authSvc *Service, accountsSvc *accounts.Service, publisher *events.Publisher, creditsCfg config.CreditsConfig) *Handler {
	return &Handler{
		authSvc:     authSvc,
		accountsSvc: accountsSvc,
		publisher:   publisher,
		credits:     creditsCfg,
		validate:    validator.New(),
	}
}

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required,min=2,max=32"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type authResponse struct {
	Tokens  *TokenPair        `json:"tokens"`
	Account *accounts.Account `json:"account"`
}

// Register creates an account seeded with the starting balance and signs it
// in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	exists, err := h.accountsSvc.ExistsByEmail(r.Context(), req.Email)
	if err != nil {
		slog.Error("checking email existence", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if exists {
		api.HandleError(w, api.ErrEmailAlreadyExists)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		slog.Error("hashing password", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	account, err := h.accountsSvc.Create(r.Context(), req.Email, req.Username, hash, h.credits.StartingBalance)
	if err != nil {
		slog.Error("creating account", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	tokens, err := h.authSvc.GenerateTokens(r.Context(), account.ID.String(), account.Email)
	if err != nil {
		slog.Error("generating tokens", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	h.publisher.TryPublishAuthState(r.Context(), account.ID, account.Email, events.AuthStateRegistered)

	api.JSON(w, http.StatusCreated, authResponse{Tokens: tokens, Account: account})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	account, err := h.accountsSvc.GetByEmail(r.Context(), req.Email)
	if err != nil {
		slog.Error("getting account by email", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if account == nil {
		api.HandleError(w, api.ErrInvalidCredentials)
		return
	}

	if err := ComparePassword(account.PasswordHash, req.Password); err != nil {
		api.HandleError(w, api.ErrInvalidCredentials)
		return
	}

	if err := h.accountsSvc.TouchLastLogin(r.Context(), account.ID); err != nil {
		slog.Warn("updating last login", "account_id", account.ID, "error", err)
	}

	tokens, err := h.authSvc.GenerateTokens(r.Context(), account.ID.String(), account.Email)
	if err != nil {
		slog.Error("generating tokens", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	h.publisher.TryPublishAuthState(r.Context(), account.ID, account.Email, events.AuthStateSignedIn)

	api.JSON(w, http.StatusOK, authResponse{Tokens: tokens, Account: account})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	tokens, err := h.authSvc.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		api.HandleError(w, api.ErrInvalidToken)
		return
	}

	api.JSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	if err := h.authSvc.Logout(r.Context(), claims.UserID); err != nil {
		slog.Error("revoking refresh tokens", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	if id, err := uuid.Parse(claims.UserID); err == nil {
		h.publisher.TryPublishAuthState(r.Context(), id, claims.Email, events.AuthStateSignedOut)
	}

	api.JSONMessage(w, http.StatusOK, "logged out")
}
