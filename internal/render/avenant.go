// Package render собирает PDF avenant из зафиксированного снимка записи.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "golang.org/x/image/webp"

	"chantierplus/internal/models"
)

// ArtifactReader — источник байтов фото/подписи.
type ArtifactReader interface {
	Get(ref string) ([]byte, error)
}

// Snapshot — всё, что попадает в документ; берётся из уже сохранённой записи.
type Snapshot struct {
	AvenantID       uuid.UUID
	CompanyName     string
	ChantierName    string
	ChantierAddress string
	Description     string
	Mode            models.PricingMode
	Price           decimal.NullDecimal
	Hours           decimal.NullDecimal
	HourlyRate      decimal.NullDecimal
	TotalHT         decimal.Decimal
	PhotoRef        *string
	SignatureRef    *string
	CreatedAt       time.Time
}

func SnapshotOf(a *models.Avenant, c *models.Chantier, company *models.Company) Snapshot {
	return Snapshot{
		AvenantID:       a.ID,
		CompanyName:     company.Name,
		ChantierName:    c.Name,
		ChantierAddress: c.Address,
		Description:     a.Description,
		Mode:            a.Type,
		Price:           a.Price,
		Hours:           a.Hours,
		HourlyRate:      a.HourlyRate,
		TotalHT:         a.TotalHT,
		PhotoRef:        a.PhotoURL,
		SignatureRef:    a.SignatureURL,
		CreatedAt:       a.CreatedAt,
	}
}

func (s Snapshot) validate() error {
	if s.AvenantID == uuid.Nil {
		return errors.New("snapshot: missing avenant id")
	}
	if !s.Mode.Valid() {
		return fmt.Errorf("snapshot: unknown pricing mode %q", s.Mode)
	}
	if s.CreatedAt.IsZero() {
		return errors.New("snapshot: missing creation date")
	}
	return nil
}

func FileName(id uuid.UUID) string { return "avenant_" + id.String() + ".pdf" }

func FormatDate(t time.Time) string { return t.Format("02/01/2006") }

// Money — ровно два знака после точки.
func Money(d decimal.Decimal) string { return d.StringFixed(2) }

type Renderer struct {
	artifacts ArtifactReader
	compress  bool
}

func New(artifacts ArtifactReader) *Renderer { return &Renderer{artifacts: artifacts, compress: true} }

var (
	accent = [3]int{245, 158, 11}
	muted  = [3]int{107, 114, 128}
	ink    = [3]int{17, 24, 39}
	paper  = [3]int{249, 250, 251}
)

// Render возвращает байты PDF. Один и тот же снимок с теми же артефактами даёт те же байты.
// Отсутствующие или нечитаемые изображения пропускаются вместе с разделом.
func (r *Renderer) Render(s Snapshot) ([]byte, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	created := FormatDate(s.CreatedAt)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)
	pdf.SetCreationDate(s.CreatedAt)
	pdf.SetModificationDate(s.CreatedAt)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(r.compress)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(tr("Avenant "+s.AvenantID.String()), false)
	pdf.SetAuthor(tr(s.CompanyName), false)
	pdf.SetCreator("ChantierPlus", false)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-18)
		pdf.SetFont("Helvetica", "", 8)
		setText(pdf, muted)
		pdf.CellFormat(0, 4, tr("Document généré par ChantierPlus - "+s.CompanyName), "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 4, "ID: "+s.AvenantID.String(), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// шапка
	pdf.SetFont("Helvetica", "B", 22)
	setText(pdf, accent)
	pdf.CellFormat(0, 11, "AVENANT DE TRAVAUX", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	setText(pdf, ink)
	pdf.CellFormat(0, 6, tr(s.CompanyName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	setText(pdf, muted)
	pdf.CellFormat(0, 5, tr("Document généré le "+created), "", 1, "C", false, 0, "")
	rule(pdf, 1)
	pdf.Ln(4)

	// объект
	pdf.SetFillColor(paper[0], paper[1], paper[2])
	pdf.SetFont("Helvetica", "B", 10)
	setText(pdf, ink)
	pdf.MultiCell(0, 6, tr("Chantier : "+s.ChantierName+"\nAdresse : "+s.ChantierAddress), "L", "L", true)
	pdf.Ln(4)

	section(pdf, tr, "Informations Générales")
	row(pdf, tr, "ID Avenant :", s.AvenantID.String())
	row(pdf, tr, "Type :", string(s.Mode))
	row(pdf, tr, "Date :", created)
	pdf.Ln(3)

	section(pdf, tr, "Description des Travaux")
	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, ink)
	pdf.MultiCell(0, 6, tr(s.Description), "", "L", true)
	pdf.Ln(3)

	section(pdf, tr, "Détails Financiers")
	switch s.Mode {
	case models.ModeForfait:
		row(pdf, tr, "Montant Forfaitaire :", Money(s.Price.Decimal)+" € HT")
	case models.ModeRegie:
		row(pdf, tr, "Nombre d'heures :", Money(s.Hours.Decimal))
		row(pdf, tr, "Taux horaire :", Money(s.HourlyRate.Decimal)+" € HT")
	}
	pdf.Ln(4)

	// итог
	pdf.SetFillColor(254, 243, 199)
	pdf.SetDrawColor(accent[0], accent[1], accent[2])
	pdf.SetLineWidth(0.6)
	pdf.SetFont("Helvetica", "B", 16)
	setText(pdf, ink)
	pdf.CellFormat(0, 14, tr("Total HT : "+Money(s.TotalHT)+" €"), "1", 1, "C", true, 0, "")
	pdf.Ln(6)

	if img, ok := r.loadImage(s.PhotoRef); ok {
		section(pdf, tr, "Photo des Travaux")
		embed(pdf, "photo", img, 170, 100)
		pdf.Ln(4)
	}

	if img, ok := r.loadImage(s.SignatureRef); ok {
		section(pdf, tr, "Signature du Client")
		embed(pdf, "signature", img, 70, 35)
		pdf.SetFont("Helvetica", "", 9)
		setText(pdf, muted)
		pdf.CellFormat(0, 5, tr("Document signé le "+created), "", 1, "C", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render avenant pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render avenant pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// pngImage — изображение, перекодированное в PNG для встраивания.
type pngImage struct {
	data []byte
	w, h int
}

// loadImage читает артефакт и нормализует его в PNG (jpeg/gif/webp/png на входе).
func (r *Renderer) loadImage(ref *string) (pngImage, bool) {
	if ref == nil || *ref == "" || r.artifacts == nil {
		return pngImage{}, false
	}
	raw, err := r.artifacts.Get(*ref)
	if err != nil {
		return pngImage{}, false
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return pngImage{}, false
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return pngImage{}, false
	}
	b := img.Bounds()
	return pngImage{data: buf.Bytes(), w: b.Dx(), h: b.Dy()}, true
}

// embed вписывает изображение в maxW×maxH мм по центру, сохраняя пропорции.
func embed(pdf *fpdf.Fpdf, name string, img pngImage, maxW, maxH float64) {
	if img.w == 0 || img.h == 0 {
		return
	}
	w, h := maxW, maxW*float64(img.h)/float64(img.w)
	if h > maxH {
		h = maxH
		w = maxH * float64(img.w) / float64(img.h)
	}

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+h > pageH-bottom {
		pdf.AddPage()
	}

	pageW, _ := pdf.GetPageSize()
	x := (pageW - w) / 2
	y := pdf.GetY()
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.data))
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	pdf.SetY(y + h + 2)
}

func section(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	setText(pdf, accent)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
	rule(pdf, 0.5)
	pdf.Ln(2)
}

func row(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	setText(pdf, muted)
	pdf.CellFormat(50, 7, tr(label), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, ink)
	pdf.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
}

func rule(pdf *fpdf.Fpdf, width float64) {
	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	y := pdf.GetY() + 1
	pdf.SetDrawColor(accent[0], accent[1], accent[2])
	pdf.SetLineWidth(width)
	pdf.Line(left, y, pageW-right, y)
	pdf.SetY(y + 1)
}

func setText(pdf *fpdf.Fpdf, c [3]int) { pdf.SetTextColor(c[0], c[1], c[2]) }
