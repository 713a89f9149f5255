package notify

import (
	"bytes"
	"embed"
	"html/template"

	"chantierplus/internal/render"
)

//go:embed templates/*.tmpl
var tplFS embed.FS

var emails = template.Must(template.ParseFS(tplFS, "templates/*.tmpl"))

type avenantEmail struct {
	CompanyName     string
	ChantierName    string
	ChantierAddress string
	Description     string
	Mode            string
	Total           string
	Date            string
}

func Subject(s render.Snapshot) string { return "Avenant - " + s.ChantierName }

// AvenantEmailHTML — тело письма по снимку avenant.
func AvenantEmailHTML(s render.Snapshot) (string, error) {
	var buf bytes.Buffer
	err := emails.ExecuteTemplate(&buf, "avenant_email", avenantEmail{
		CompanyName:     s.CompanyName,
		ChantierName:    s.ChantierName,
		ChantierAddress: s.ChantierAddress,
		Description:     s.Description,
		Mode:            string(s.Mode),
		Total:           render.Money(s.TotalHT),
		Date:            render.FormatDate(s.CreatedAt),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
