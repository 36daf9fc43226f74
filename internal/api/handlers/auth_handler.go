package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/muhammedsuhaib/raheel-be/internal/auth"
	"github.com/muhammedsuhaib/raheel-be/internal/models"
	"github.com/muhammedsuhaib/raheel-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, login and profile management.
type AuthHandler struct {
	users  services.UserServiceProvider
	tokens *auth.TokenService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register, login and profile: the user plus a
// bearer token.
type AuthResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (p RegisterPayload) validate() error {
	if err := validateEmail(p.Email); err != nil {
		return err
	}
	if err := validateName(p.Name); err != nil {
		return err
	}
	if err := validatePassword(p.Password); err != nil {
		return err
	}
	if p.Password != p.ConfirmPassword {
		return errors.New("passwords do not match")
	}
	return nil
}

// Register handles new user registration. Validation happens before any
// hashing; the email pre-check is advisory and the storage layer's UNIQUE
// constraint decides the winner of a concurrent race, so both paths surface
// the same 409.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := payload.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.users.GetByEmail(payload.Email); err == nil {
		respondError(w, http.StatusConflict, services.ErrEmailTaken.Error())
		return
	} else if !errors.Is(err, services.ErrNotFound) {
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to check email availability")
		respondError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	user, err := h.users.Create(payload.Email, payload.Name, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			respondError(w, http.StatusConflict, services.ErrEmailTaken.Error())
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		respondError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{User: user, Token: token})
}

// Login handles user authentication and token issuance. The failure response
// is identical for an unknown email and a wrong password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Authenticate(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
			respondError(w, http.StatusUnauthorized, services.ErrInvalidCredentials.Error())
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Login failed")
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{User: user, Token: token})
}

// Logout is a stateless no-op: tokens are self-contained, so invalidation is
// the client discarding its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "successfully logged out"})
}

// Profile returns the authenticated user along with a fresh token.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid or missing auth token")
		return
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load profile")
		respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{User: user, Token: token})
}

// UpdateProfile applies a partial update to the caller's name and email.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid or missing auth token")
		return
	}

	var patch models.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if patch.Email != nil {
		if err := validateEmail(*patch.Email); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	user, err := h.users.Update(userID, patch)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, services.ErrEmailTaken):
			respondError(w, http.StatusConflict, services.ErrEmailTaken.Error())
		default:
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile")
			respondError(w, http.StatusInternalServerError, "failed to update profile")
		}
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// DeleteProfile permanently deletes the caller's account. Outstanding tokens
// stay structurally valid until they expire.
func (h *AuthHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid or missing auth token")
		return
	}

	if err := h.users.Delete(userID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to delete account")
		respondError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
