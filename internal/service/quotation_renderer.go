package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/navisol/werf/internal/config"
	"github.com/navisol/werf/internal/model/entity"
)

// quotationTemplate is the printable quotation/invoice layout. The HTML is
// rendered in-memory and handed to wkhtmltopdf.
const quotationTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 11pt; color: #1a1a1a; margin: 2cm; }
  h1 { font-size: 18pt; margin-bottom: 0; }
  .brand { color: #0b4f8a; }
  .meta { margin: 1em 0; }
  .meta td { padding: 1px 12px 1px 0; }
  table.items { width: 100%; border-collapse: collapse; margin-top: 1.5em; }
  table.items th { text-align: left; border-bottom: 2px solid #0b4f8a; padding: 4px 6px; }
  table.items td { border-bottom: 1px solid #ddd; padding: 4px 6px; }
  td.num, th.num { text-align: right; }
  .totals { margin-top: 1em; float: right; }
  .totals td { padding: 2px 12px; }
  .totals .grand { font-weight: bold; border-top: 2px solid #0b4f8a; }
  .excluded { color: #999; font-style: italic; }
  .footer { clear: both; margin-top: 3em; font-size: 9pt; color: #666; }
</style>
</head>
<body>
  <h1><span class="brand">{{.Company.Brand}}</span> — {{.DocTitle}}</h1>
  <p>{{.Company.Name}} · {{.Company.Address}} · KVK {{.Company.KVKNumber}} · BTW {{.Company.VATNumber}}</p>

  <table class="meta">
    <tr><td>Nummer</td><td>{{.Document.QuoteNumber}} (v{{.Document.Version}})</td></tr>
    <tr><td>Datum</td><td>{{.Date}}</td></tr>
    {{if .ValidUntil}}<tr><td>Geldig tot</td><td>{{.ValidUntil}}</td></tr>{{end}}
    <tr><td>Project</td><td>{{.Project.ProjectNumber}} — {{.Project.Name}}</td></tr>
    {{if .Project.Boat.BoatName}}<tr><td>Schip</td><td>{{.Project.Boat.BoatName}}{{if .Project.Boat.HIN}} (HIN {{.Project.Boat.HIN}}){{end}}</td></tr>{{end}}
    <tr><td>Klant</td><td>{{.Client.Name}}{{if .Client.ClientNumber}} ({{.Client.ClientNumber}}){{end}}</td></tr>
  </table>

  <table class="items">
    <tr>
      <th>Categorie</th><th>Omschrijving</th>
      <th class="num">Aantal</th><th>Eenheid</th>
      <th class="num">Stukprijs</th><th class="num">Totaal</th>
    </tr>
    {{range .Items}}
    <tr{{if not .IsIncluded}} class="excluded"{{end}}>
      <td>{{.Category}}</td><td>{{.Name}}{{if .IsOptional}} (optie){{end}}</td>
      <td class="num">{{printf "%.4g" .Quantity}}</td><td>{{.Unit}}</td>
      <td class="num">{{money .UnitPriceExclVat}}</td><td class="num">{{money .LineTotal}}</td>
    </tr>
    {{end}}
  </table>

  <table class="totals">
    <tr><td>Subtotaal excl. BTW</td><td class="num">{{money .Document.SubtotalExclVat}}</td></tr>
    <tr><td>BTW {{vatpct .Document.VatRate}}</td><td class="num">{{money .Document.VatAmount}}</td></tr>
    <tr class="grand"><td>Totaal incl. BTW</td><td class="num">{{money .Document.TotalInclVat}}</td></tr>
  </table>

  <p class="footer">{{.Company.Name}} · {{.Company.Email}} · {{.Company.Phone}}</p>
</body>
</html>`

// QuotationRenderer turns a document snapshot into printable HTML and PDF.
type QuotationRenderer struct {
	company config.CompanyConfig
	tmpl    *template.Template
}

// NewQuotationRenderer creates the renderer. binaryPath points at the
// wkhtmltopdf executable; empty means PATH lookup.
func NewQuotationRenderer(company config.CompanyConfig, binaryPath string) *QuotationRenderer {
	if binaryPath != "" {
		wkhtmltopdf.SetPath(binaryPath)
	}
	funcs := template.FuncMap{
		"money": func(v float64) string {
			return fmt.Sprintf("€ %.2f", v)
		},
		"vatpct": func(rate float64) string {
			return strings.TrimSuffix(fmt.Sprintf("%.2f", rate*100), ".00") + "%"
		},
	}
	tmpl := template.Must(template.New("quotation").Funcs(funcs).Parse(quotationTemplate))
	return &QuotationRenderer{company: company, tmpl: tmpl}
}

type quotationData struct {
	Company    config.CompanyConfig
	DocTitle   string
	Date       string
	ValidUntil string
	Project    *entity.Project
	Client     *entity.Client
	Document   *entity.ProjectDocument
	Items      []entity.EquipmentItem
}

// RenderHTML produces the quotation/invoice HTML for a document snapshot.
func (r *QuotationRenderer) RenderHTML(project *entity.Project, client *entity.Client, items []entity.EquipmentItem, doc *entity.ProjectDocument) (string, error) {
	title := "Offerte"
	if doc.Type == entity.DocumentTypeInvoice {
		title = "Factuur"
	}

	data := quotationData{
		Company:  r.company,
		DocTitle: title,
		Date:     doc.CreatedAt.Format("02-01-2006"),
		Project:  project,
		Client:   client,
		Document: doc,
		Items:    items,
	}
	if doc.ValidUntil != nil {
		data.ValidUntil = doc.ValidUntil.Format("02-01-2006")
	}
	if data.Date == "01-01-0001" {
		data.Date = time.Now().Format("02-01-2006")
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render quotation html: %w", err)
	}
	return buf.String(), nil
}

// RenderPDF converts rendered HTML to PDF bytes.
func (r *QuotationRenderer) RenderPDF(html string) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("init pdf generator: %w", err)
	}

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdfg.Bytes(), nil
}

// FileName builds the export name, e.g. NaviSol-Offerte-Q-2026-001-v2.pdf.
func (r *QuotationRenderer) FileName(doc *entity.ProjectDocument) string {
	kind := "Offerte"
	if doc.Type == entity.DocumentTypeInvoice {
		kind = "Factuur"
	}
	return fmt.Sprintf("%s-%s-%s-v%d.pdf", r.company.Brand, kind, doc.QuoteNumber, doc.Version)
}
