package avenants

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"chantierplus/internal/apperr"
	"chantierplus/internal/artifacts"
	"chantierplus/internal/logs"
	"chantierplus/internal/middleware"
	"chantierplus/internal/models"
	"chantierplus/internal/pipeline"
)

// запас на multipart-заголовки поверх лимита файла
const formOverhead = 1 << 20

type Handler struct {
	svc    Service
	upload Uploader
}

func NewHandler(svc Service, upload Uploader) *Handler {
	return &Handler{svc: svc, upload: upload}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.CurrentUser(r.Context())
	if err != nil {
		models.WriteError(w, err)
		return
	}
	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, apperr.Validation("invalid JSON body: %v", err))
		return
	}

	res, err := h.svc.Create(r.Context(), req, actor)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	if failed := res.Failed(); len(failed) > 0 {
		logs.Logger.Warnf("reqid=%s avenant=%s created with %d failed stage(s)",
			middleware.GetRequestID(r), res.Avenant.ID, len(failed))
	}
	models.WriteJSON(w, http.StatusOK, CreateResponse{Avenant: res.Avenant, Outcomes: res.Outcomes})
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.CurrentUser(r.Context())
	if err != nil {
		models.WriteError(w, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.upload.MaxBytes()+formOverhead)
	f, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			models.WriteError(w, apperr.Validation("file exceeds %d bytes", h.upload.MaxBytes()))
			return
		}
		models.WriteError(w, apperr.Validation("multipart field \"file\" is required"))
		return
	}
	defer f.Close()

	ref, err := h.upload.Accept(actor.CompanyID, artifacts.Upload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Size:        hdr.Size,
		Body:        f,
	})
	if err != nil {
		models.WriteError(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, UploadResponse{PhotoURL: ref})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}
	a, _, err := h.svc.Get(r.Context(), id, actor)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, a)
}

// SendEmail повторно отправляет PDF; статус avenant не меняется.
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := actorAndID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Resend(r.Context(), id, actor)
	if err != nil {
		models.WriteError(w, err)
		return
	}
	resp := SendEmailResponse{Message: "Email sent successfully", Recipients: res.Recipients, Outcomes: res.Outcomes}
	if len(res.Recipients) > 0 {
		resp.Email = res.Recipients[0]
	}
	models.WriteJSON(w, http.StatusOK, resp)
}

func actorAndID(w http.ResponseWriter, r *http.Request) (*models.UserProfile, uuid.UUID, bool) {
	actor, err := middleware.CurrentUser(r.Context())
	if err != nil {
		models.WriteError(w, err)
		return nil, uuid.Nil, false
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		models.WriteError(w, apperr.Validation("invalid avenant id"))
		return nil, uuid.Nil, false
	}
	return actor, id, true
}
