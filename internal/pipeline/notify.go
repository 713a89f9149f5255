package pipeline

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"chantierplus/internal/apperr"
	"chantierplus/internal/artifacts"
	"chantierplus/internal/logs"
	"chantierplus/internal/models"
	"chantierplus/internal/notify"
	"chantierplus/internal/render"
)

type Stage string

const (
	StageRender     Stage = "render"
	StageStore      Stage = "store"
	StageRecipients Stage = "recipients"
	StageDispatch   Stage = "dispatch"
	StageCleanup    Stage = "cleanup"
	StageRecord     Stage = "record"
)

// StageOutcome — итог одного этапа после сохранения записи.
type StageOutcome struct {
	Stage      Stage             `json:"stage"`
	OK         bool              `json:"ok"`
	Error      string            `json:"error,omitempty"`
	Deliveries []notify.Delivery `json:"deliveries,omitempty"`
}

type Result struct {
	Avenant    *models.Avenant
	Recipients []string
	Outcomes   []StageOutcome
}

// Failed — этапы, завершившиеся ошибкой.
func (r *Result) Failed() []StageOutcome {
	var out []StageOutcome
	for _, o := range r.Outcomes {
		if !o.OK {
			out = append(out, o)
		}
	}
	return out
}

func (r *Result) add(a *models.Avenant, stage Stage, err error) {
	o := StageOutcome{Stage: stage, OK: err == nil}
	if err != nil {
		o.Error = err.Error()
		logs.Avenant(a.ID, string(stage)).Errorf("stage failed: %v", err)
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Resend заново строит PDF и рассылает его; запись не меняется.
// В отличие от Create, отсутствие хотя бы одной доставки — ошибка Transport.
func (p *Pipeline) Resend(ctx context.Context, id uuid.UUID, actor *models.UserProfile) (*Result, error) {
	a, c, err := p.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	res := &Result{Avenant: a}
	deliveries := p.notify(ctx, res, c, actor, models.TriggerResend)

	for _, o := range res.Outcomes {
		if o.Stage == StageRender && !o.OK {
			return res, apperr.Transport(nil, "could not render avenant document")
		}
	}
	if len(deliveries) == 0 || notify.Failed(deliveries) == len(deliveries) {
		return res, apperr.Transport(nil, "email could not be sent")
	}
	return res, nil
}

// notify выполняет render → recipients → dispatch, затем cleanup и запись журнала.
// При создании PDF сохраняется как временный артефакт и удаляется вместе с фото и подписью;
// сбой сохранения копии не мешает рассылке PDF из памяти.
func (p *Pipeline) notify(ctx context.Context, res *Result, c *models.Chantier, actor *models.UserProfile, trigger string) []notify.Delivery {
	a := res.Avenant
	transient := trigger == models.TriggerCreate
	var pdfRef string

	// defer в обратном порядке: сначала cleanup, потом журнал
	defer func() { p.record(ctx, res, trigger) }()
	if transient {
		defer func() {
			refs := []*string{a.PhotoURL, a.SignatureURL}
			if pdfRef != "" {
				refs = append(refs, &pdfRef)
			}
			res.add(a, StageCleanup, p.cleanup(a.ID, refs...))
		}()
	}

	// cleanup и журнал идут уже без этого срока
	work := ctx
	if p.notifyTimeout > 0 {
		var cancel context.CancelFunc
		work, cancel = context.WithTimeout(ctx, p.notifyTimeout)
		defer cancel()
	}

	company, err := p.companies.Get(work, c.CompanyID)
	if err != nil {
		res.add(a, StageRender, apperr.Storage(err, "load company"))
		company = &models.Company{ID: c.CompanyID}
	}

	var (
		pdf  []byte
		html string
	)
	snap := render.SnapshotOf(a, c, company)
	if err == nil {
		pdf, html, err = p.renderAll(snap)
		res.add(a, StageRender, err)
		if err != nil {
			pdf = nil
		} else if transient {
			ref, err := p.artifacts.PutNamed(render.FileName(a.ID), bytes.NewReader(pdf))
			if err == nil {
				pdfRef = ref
			}
			res.add(a, StageStore, err)
		}
	}

	recipients, err := p.recipients.Resolve(work, c, actor, company)
	res.Recipients = recipients
	res.add(a, StageRecipients, err)

	if pdf == nil {
		// без документа письмо не отправляем
		return nil
	}
	name := render.FileName(a.ID)
	atts := []notify.Attachment{{Filename: name, Data: pdf, ContentType: artifacts.ContentType(name)}}
	deliveries := p.dispatcher.Dispatch(work, recipients, notify.Subject(snap), html, atts)
	o := StageOutcome{Stage: StageDispatch, OK: notify.Failed(deliveries) == 0 && len(deliveries) > 0, Deliveries: deliveries}
	if !o.OK {
		o.Error = "one or more deliveries failed"
		if len(deliveries) == 0 {
			o.Error = "no recipients"
		}
		logs.Avenant(a.ID, string(StageDispatch)).Warnf("delivered=%d failed=%d",
			len(deliveries)-notify.Failed(deliveries), notify.Failed(deliveries))
	}
	res.Outcomes = append(res.Outcomes, o)
	return deliveries
}

func (p *Pipeline) renderAll(s render.Snapshot) ([]byte, string, error) {
	pdf, err := p.renderer.Render(s)
	if err != nil {
		return nil, "", apperr.Transport(err, "render pdf")
	}
	html, err := notify.AvenantEmailHTML(s)
	if err != nil {
		return nil, "", apperr.Transport(err, "render email body")
	}
	return pdf, html, nil
}

// cleanup удаляет существующие временные артефакты; сбой одного не мешает остальным.
func (p *Pipeline) cleanup(id uuid.UUID, refs ...*string) error {
	var first error
	for _, ref := range refs {
		if ref == nil || *ref == "" || !p.artifacts.Exists(*ref) {
			continue
		}
		if err := p.artifacts.Delete(*ref); err != nil {
			logs.Avenant(id, string(StageCleanup)).Warnf("delete %s: %v", *ref, err)
			if first == nil {
				first = err
			}
			continue
		}
		logs.Avenant(id, string(StageCleanup)).Debugf("deleted %s", *ref)
	}
	return first
}

// record сохраняет журнал рассылки; сбой только логируется и добавляется в Outcomes.
func (p *Pipeline) record(ctx context.Context, res *Result, trigger string) {
	a := res.Avenant
	n := &models.AvenantNotification{AvenantID: a.ID, Trigger: trigger}
	var delivered, failed int
	for _, o := range res.Outcomes {
		for _, d := range o.Deliveries {
			if d.OK {
				delivered++
			} else {
				failed++
			}
		}
	}
	n.Delivered, n.Failed = delivered, failed

	recipients, _ := json.Marshal(res.Recipients)
	outcomes, _ := json.Marshal(res.Outcomes)
	n.Recipients = datatypes.JSON(recipients)
	n.Outcomes = datatypes.JSON(outcomes)

	if err := p.avenants.RecordNotification(ctx, n); err != nil {
		res.add(a, StageRecord, apperr.Storage(err, "record notification"))
	}
}
