package avenants

import (
	"context"

	"github.com/google/uuid"

	"chantierplus/internal/artifacts"
	"chantierplus/internal/models"
	"chantierplus/internal/pipeline"
)

// Service — то, что нужно обработчикам от pipeline.Pipeline.
type Service interface {
	Create(ctx context.Context, req pipeline.Request, actor *models.UserProfile) (*pipeline.Result, error)
	Get(ctx context.Context, id uuid.UUID, actor *models.UserProfile) (*models.Avenant, *models.Chantier, error)
	Resend(ctx context.Context, id uuid.UUID, actor *models.UserProfile) (*pipeline.Result, error)
}

type Uploader interface {
	Accept(owner uuid.UUID, u artifacts.Upload) (string, error)
	MaxBytes() int64
}

// CreateResponse — запись плюс итоги этапов рассылки.
type CreateResponse struct {
	*models.Avenant
	Outcomes []pipeline.StageOutcome `json:"outcomes"`
}

type UploadResponse struct {
	PhotoURL string `json:"photo_url"`
}

type SendEmailResponse struct {
	Message    string                  `json:"message"`
	Email      string                  `json:"email"`
	Recipients []string                `json:"recipients"`
	Outcomes   []pipeline.StageOutcome `json:"outcomes"`
}
