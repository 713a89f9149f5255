// Package pipeline — создание avenant и рассылка PDF заинтересованным сторонам.
//
// До сохранения записи любая ошибка прерывает запрос. После сохранения этапы
// (render, recipients, dispatch, cleanup) выполняются по возможности: их сбои
// попадают в Result.Outcomes и журнал avenant_notifications, но запрос не валят.
package pipeline

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"chantierplus/internal/apperr"
	"chantierplus/internal/artifacts"
	"chantierplus/internal/models"
	"chantierplus/internal/notify"
	"chantierplus/internal/pricing"
	"chantierplus/internal/render"
	"chantierplus/internal/repo"
)

// Request — тело POST /avenants.
type Request struct {
	ChantierID    uuid.UUID          `json:"chantier_id"`
	Description   string             `json:"description" validate:"required,max=10000"`
	Type          models.PricingMode `json:"type" validate:"required,oneof=FORFAIT REGIE"`
	Price         *decimal.Decimal   `json:"price"`
	Hours         *decimal.Decimal   `json:"hours"`
	HourlyRate    *decimal.Decimal   `json:"hourly_rate"`
	PhotoURL      *string            `json:"photo_url"`
	SignatureData *string            `json:"signature_data"`
}

type ChantierGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Chantier, error)
}

type CompanyGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Company, error)
}

type AvenantStore interface {
	Create(ctx context.Context, a *models.Avenant) error
	Get(ctx context.Context, id uuid.UUID) (*models.Avenant, error)
	RecordNotification(ctx context.Context, n *models.AvenantNotification) error
}

// Artifacts — файловое хранилище (artifacts.Store).
type Artifacts interface {
	Get(ref string) ([]byte, error)
	Exists(ref string) bool
	Delete(ref string) error
	PutNamed(name string, r io.Reader) (string, error)
	MaterializeSignature(payload string) (string, error)
}

type Renderer interface {
	Render(s render.Snapshot) ([]byte, error)
}

type RecipientResolver interface {
	Resolve(ctx context.Context, c *models.Chantier, actor *models.UserProfile, company *models.Company) ([]string, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, recipients []string, subject, html string, atts []notify.Attachment) []notify.Delivery
}

type Deps struct {
	Chantiers  ChantierGetter
	Companies  CompanyGetter
	Avenants   AvenantStore
	Artifacts  Artifacts
	Renderer   Renderer
	Recipients RecipientResolver
	Dispatcher Dispatcher

	// срок на рендер и рассылку; 0 — без ограничения
	NotifyTimeout time.Duration
}

type Pipeline struct {
	chantiers  ChantierGetter
	companies  CompanyGetter
	avenants   AvenantStore
	artifacts  Artifacts
	renderer   Renderer
	recipients RecipientResolver
	dispatcher Dispatcher

	notifyTimeout time.Duration
	validate      *validator.Validate
	now           func() time.Time
}

func New(d Deps) *Pipeline {
	return &Pipeline{
		chantiers:  d.Chantiers,
		companies:  d.Companies,
		avenants:   d.Avenants,
		artifacts:  d.Artifacts,
		renderer:   d.Renderer,
		recipients: d.Recipients,
		dispatcher: d.Dispatcher,

		notifyTimeout: d.NotifyTimeout,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		now:           time.Now,
	}
}

// Create проверяет запрос, сохраняет avenant со статусом SIGNED и рассылает PDF.
// Ошибка возвращается только если запись не была сохранена.
func (p *Pipeline) Create(ctx context.Context, req Request, actor *models.UserProfile) (*Result, error) {
	if actor == nil {
		return nil, apperr.Unauthenticated("not authenticated")
	}
	if req.ChantierID == uuid.Nil {
		return nil, apperr.Validation("chantier_id is required")
	}
	// сначала доступ к объекту, потом содержимое запроса
	c, err := p.authorizedChantier(ctx, req.ChantierID, actor)
	if err != nil {
		return nil, err
	}
	if err := p.checkRequest(req); err != nil {
		return nil, err
	}

	total, err := pricing.Total(pricing.Inputs{
		Mode:       req.Type,
		Price:      req.Price,
		Hours:      req.Hours,
		HourlyRate: req.HourlyRate,
	})
	if err != nil {
		return nil, err
	}

	photo, err := p.photoRef(req.PhotoURL, c.CompanyID)
	if err != nil {
		return nil, err
	}

	var signature *string
	if req.SignatureData != nil && strings.TrimSpace(*req.SignatureData) != "" {
		ref, err := p.artifacts.MaterializeSignature(*req.SignatureData)
		if err != nil {
			return nil, err
		}
		signature = &ref
	}

	a := models.NewAvenant(models.AvenantParams{
		ChantierID:   c.ID,
		AuthorID:     actor.ID,
		Description:  strings.TrimSpace(req.Description),
		Type:         req.Type,
		Price:        pricing.Nullable(req.Price),
		Hours:        pricing.Nullable(req.Hours),
		HourlyRate:   pricing.Nullable(req.HourlyRate),
		TotalHT:      total,
		Status:       models.StatusSigned,
		SignedAt:     p.now().UTC(),
		PhotoURL:     photo,
		SignatureURL: signature,
	})
	if err := p.avenants.Create(ctx, a); err != nil {
		if signature != nil {
			_ = p.artifacts.Delete(*signature)
		}
		return nil, apperr.Storage(err, "persist avenant")
	}

	// запись сохранена: отмена клиента дальше ничего не прерывает
	ctx = context.WithoutCancel(ctx)
	res := &Result{Avenant: a}
	p.notify(ctx, res, c, actor, models.TriggerCreate)
	return res, nil
}

// Get — avenant, если его объект принадлежит компании пользователя.
func (p *Pipeline) Get(ctx context.Context, id uuid.UUID, actor *models.UserProfile) (*models.Avenant, *models.Chantier, error) {
	if actor == nil {
		return nil, nil, apperr.Unauthenticated("not authenticated")
	}
	a, err := p.avenants.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil, apperr.NotFound("avenant not found")
	}
	if err != nil {
		return nil, nil, err
	}
	c, err := p.authorizedChantier(ctx, a.ChantierID, actor)
	if err != nil {
		return nil, nil, err
	}
	return a, c, nil
}

func (p *Pipeline) checkRequest(req Request) error {
	if err := p.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return apperr.Validation("field %s failed %q validation", f.Field(), f.Tag())
		}
		return apperr.Validation("invalid request: %v", err)
	}
	return nil
}

func (p *Pipeline) authorizedChantier(ctx context.Context, id uuid.UUID, actor *models.UserProfile) (*models.Chantier, error) {
	c, err := p.chantiers.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound("chantier not found")
	}
	if err != nil {
		return nil, err
	}
	if c.CompanyID != actor.CompanyID {
		return nil, apperr.Forbidden("not authorized to access this chantier")
	}
	return c, nil
}

// photoRef принимает только ссылку, выданную POST /avenants/files той же компании.
func (p *Pipeline) photoRef(ref *string, company uuid.UUID) (*string, error) {
	if ref == nil || strings.TrimSpace(*ref) == "" {
		return nil, nil
	}
	r := strings.TrimSpace(*ref)
	if !artifacts.OwnedBy(r, company) || !p.artifacts.Exists(r) {
		return nil, apperr.Validation("unknown photo reference %q", r)
	}
	return &r, nil
}
