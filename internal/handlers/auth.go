package handlers

import (
	"net/http"

	"github.com/BerylCAtieno/documind/internal/models"
	"github.com/BerylCAtieno/documind/internal/services"
	"github.com/BerylCAtieno/documind/internal/utils"
)

type AuthHandler struct {
	service services.UserService
	logger  *utils.Logger
}

func NewAuthHandler(service services.UserService, logger *utils.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	user, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusCreated, user)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}

	user, err := h.service.SignIn(r.Context(), req)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, user)
}
