// Package company — сведения о компании текущего пользователя.
package company

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"chantierplus/internal/apperr"
	"chantierplus/internal/middleware"
	"chantierplus/internal/models"
	"chantierplus/internal/repo"
)

type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Company, error)
}

type Handler struct{ store Store }

func NewHandler(store Store) *Handler { return &Handler{store: store} }

func RegisterRoutes(r *mux.Router, h *Handler, mw ...mux.MiddlewareFunc) {
	sub := r.PathPrefix("/company").Subrouter()
	sub.Use(mw...)
	sub.HandleFunc("/info", h.Info).Methods(http.MethodGet)
}

func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.CurrentUser(r.Context())
	if err != nil {
		models.WriteError(w, err)
		return
	}
	c, err := h.store.Get(r.Context(), actor.CompanyID)
	if errors.Is(err, repo.ErrNotFound) {
		models.WriteError(w, apperr.NotFound("company not found"))
		return
	}
	if err != nil {
		models.WriteError(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, c)
}
