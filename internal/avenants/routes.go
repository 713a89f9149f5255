package avenants

import (
	"net/http"

	"github.com/gorilla/mux"
)

const uuidPattern = "{id:[a-fA-F0-9\\-]{36}}"

// RegisterRoutes вешает /avenants на r; mw (обычно проверка токена) применяется ко всем маршрутам.
func RegisterRoutes(r *mux.Router, h *Handler, mw ...mux.MiddlewareFunc) {
	sub := r.PathPrefix("/avenants").Subrouter()
	sub.Use(mw...)
	sub.HandleFunc("", h.Create).Methods(http.MethodPost)
	sub.HandleFunc("/", h.Create).Methods(http.MethodPost)
	sub.HandleFunc("/files", h.Upload).Methods(http.MethodPost)
	sub.HandleFunc("/"+uuidPattern, h.Get).Methods(http.MethodGet)
	sub.HandleFunc("/"+uuidPattern+"/send-email", h.SendEmail).Methods(http.MethodPost)
}
