package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/fintrack/fintrack-be/internal/auth"
	"github.com/fintrack/fintrack-be/internal/services"
)

// validate is shared by all handlers; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = validator.New()

// decodeValid decodes a JSON body into payload and runs its validate tags.
// Returns false after writing the 400 response when the body is unusable.
func decodeValid(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		WriteErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(payload); err != nil {
		WriteErrorMsg(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

// AuthHandler handles registration, login and the current-user lookup.
type AuthHandler struct {
	users services.UserServiceProvider
	auth  *auth.Authenticator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, authenticator *auth.Authenticator) *AuthHandler {
	return &AuthHandler{users: users, auth: authenticator}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register handles new user registration and returns a token immediately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if !decodeValid(w, r, &payload) {
		return
	}
	if payload.Password != payload.PasswordConfirm {
		WriteErrorMsg(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	user, err := h.users.Register(payload.Name, payload.Email, payload.Password)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		WriteErrorMsg(w, http.StatusInternalServerError, "internal server error")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Login handles user authentication and token generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if !decodeValid(w, r, &payload) {
		return
	}

	user, err := h.users.Authenticate(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		WriteError(w, r, err)
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		WriteErrorMsg(w, http.StatusInternalServerError, "internal server error")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Me returns the user behind the presented token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		WriteErrorMsg(w, http.StatusUnauthorized, "missing auth token")
		return
	}

	user, err := h.users.GetUserByID(claims.UserID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, user)
}
