// Package chantiers — объекты (chantiers) компании пользователя.
package chantiers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"chantierplus/internal/apperr"
	"chantierplus/internal/middleware"
	"chantierplus/internal/models"
	"chantierplus/internal/repo"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

type Store interface {
	Create(ctx context.Context, c *models.Chantier) error
	Get(ctx context.Context, id uuid.UUID) (*models.Chantier, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, skip, limit int) ([]models.Chantier, error)
}

type AvenantLister interface {
	ListByChantier(ctx context.Context, chantierID uuid.UUID) ([]models.Avenant, error)
}

type CreateRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Address      string `json:"address" validate:"required"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
}

type Handler struct {
	store    Store
	avenants AvenantLister
	validate *validator.Validate
}

func NewHandler(store Store, avenants AvenantLister) *Handler {
	return &Handler{store: store, avenants: avenants, validate: validator.New()}
}

func RegisterRoutes(r *mux.Router, h *Handler, mw ...mux.MiddlewareFunc) {
	sub := r.PathPrefix("/chantiers").Subrouter()
	sub.Use(mw...)
	sub.HandleFunc("", h.Create).Methods(http.MethodPost)
	sub.HandleFunc("/", h.Create).Methods(http.MethodPost)
	sub.HandleFunc("", h.List).Methods(http.MethodGet)
	sub.HandleFunc("/", h.List).Methods(http.MethodGet)
	sub.HandleFunc("/{id:[a-fA-F0-9\\-]{36}}", h.Get).Methods(http.MethodGet)
	sub.HandleFunc("/{id:[a-fA-F0-9\\-]{36}}/avenants", h.Avenants).Methods(http.MethodGet)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.CurrentUser(r.Context())
	if err != nil {
		models.WriteError(w, err)
		return
	}
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, apperr.Validation("invalid JSON body: %v", err))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	req.ContactEmail = strings.TrimSpace(req.ContactEmail)
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			models.WriteError(w, apperr.Validation("field %s failed %q validation", verrs[0].Field(), verrs[0].Tag()))
			return
		}
		models.WriteError(w, apperr.Validation("invalid request"))
		return
	}

	c := &models.Chantier{
		CompanyID:    actor.CompanyID,
		Name:         req.Name,
		Address:      req.Address,
		ContactEmail: req.ContactEmail,
	}
	if err := h.store.Create(r.Context(), c); err != nil {
		models.WriteError(w, apperr.Storage(err, "create chantier"))
		return
	}
	models.WriteJSON(w, http.StatusOK, c)
}

// List отдаёт объекты компании постранично (?skip=&limit=).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.CurrentUser(r.Context())
	if err != nil {
		models.WriteError(w, err)
		return
	}
	skip, err := intParam(r, "skip", 0)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	limit, err := intParam(r, "limit", defaultLimit)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	out, err := h.store.ListByCompany(r.Context(), actor.CompanyID, skip, limit)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	if out == nil {
		out = []models.Chantier{}
	}
	models.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.owned(w, r)
	if !ok {
		return
	}
	models.WriteJSON(w, http.StatusOK, c)
}

// Avenants — avenants объекта, новые первыми.
func (h *Handler) Avenants(w http.ResponseWriter, r *http.Request) {
	c, ok := h.owned(w, r)
	if !ok {
		return
	}
	out, err := h.avenants.ListByChantier(r.Context(), c.ID)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	if out == nil {
		out = []models.Avenant{}
	}
	models.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) owned(w http.ResponseWriter, r *http.Request) (*models.Chantier, bool) {
	actor, err := middleware.CurrentUser(r.Context())
	if err != nil {
		models.WriteError(w, err)
		return nil, false
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, apperr.Validation("invalid chantier id"))
		return nil, false
	}
	c, err := h.store.Get(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		models.WriteError(w, apperr.NotFound("chantier not found"))
		return nil, false
	}
	if err != nil {
		models.WriteError(w, err)
		return nil, false
	}
	if c.CompanyID != actor.CompanyID {
		models.WriteError(w, apperr.Forbidden("not authorized to access this chantier"))
		return nil, false
	}
	return c, true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperr.Validation("%s must be a non-negative integer", name)
	}
	return n, nil
}
