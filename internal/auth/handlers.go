package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"chantierplus/internal/apperr"
	"chantierplus/internal/middleware"
	"chantierplus/internal/models"
)

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	CompanyName string `json:"company_name" validate:"required,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Handler struct {
	accounts *Accounts
	validate *validator.Validate
}

func NewHandler(accounts *Accounts) *Handler {
	return &Handler{accounts: accounts, validate: validator.New()}
}

// RegisterRoutes: register/login открыты, /auth/me за mw.
func RegisterRoutes(r *mux.Router, h *Handler, mw ...mux.MiddlewareFunc) {
	open := r.PathPrefix("/auth").Subrouter()
	open.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	open.HandleFunc("/login", h.Login).Methods(http.MethodPost)

	me := r.PathPrefix("/auth/me").Subrouter()
	me.Use(mw...)
	me.HandleFunc("", h.Me).Methods(http.MethodGet)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.accounts.Register(r.Context(), req.Email, req.Password, req.CompanyName)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthenticated) {
			w.Header().Set("WWW-Authenticate", "Bearer")
		}
		models.WriteError(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := middleware.CurrentUser(r.Context())
	if err != nil {
		models.WriteError(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		models.WriteError(w, apperr.Validation("invalid JSON body: %v", err))
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			models.WriteError(w, apperr.Validation("field %s failed %q validation", verrs[0].Field(), verrs[0].Tag()))
			return false
		}
		models.WriteError(w, apperr.Validation("invalid request"))
		return false
	}
	return true
}
