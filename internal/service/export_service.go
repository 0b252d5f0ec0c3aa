package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/navisol/werf/internal/config"
	"github.com/navisol/werf/internal/model/entity"
)

// ExportService builds Excel/CSV exports of equipment lists and parses the
// CSV files the sales team uploads back. Uploads come from Excel saves, so
// the parser tolerates semicolon delimiters, stray quotes and Windows-1252.
type ExportService struct {
	company config.CompanyConfig
}

// NewExportService creates the export service.
func NewExportService(company config.CompanyConfig) *ExportService {
	return &ExportService{company: company}
}

// BuildEquipmentWorkbook renders the equipment list as an Excel workbook.
func (s *ExportService) BuildEquipmentWorkbook(project *entity.Project, eq *entity.Equipment) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Equipment"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"0B4F8A"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create bold style: %w", err)
	}

	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s — %s (%s)", s.company.Brand, project.Name, project.ProjectNumber))
	f.SetCellStyle(sheet, "A1", "A1", boldStyle)
	f.SetCellValue(sheet, "A2", "Exported "+time.Now().Format("2006-01-02 15:04"))

	headers := []string{"Category", "Name", "Quantity", "Unit", "Unit price excl. VAT", "Line total", "Standard", "Optional", "Included", "CE", "Safety", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheet, cell, h)
	}
	endHeader, _ := excelize.CoordinatesToCellName(len(headers), 4)
	f.SetCellStyle(sheet, "A4", endHeader, headerStyle)

	row := 5
	for _, item := range eq.Items {
		values := []interface{}{
			item.Category, item.Name, item.Quantity, item.Unit,
			item.UnitPriceExclVat, item.LineTotal,
			boolMark(item.IsStandard), boolMark(item.IsOptional), boolMark(item.IsIncluded),
			boolMark(item.CERelevant), boolMark(item.SafetyCritical), item.Notes,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		priceStart, _ := excelize.CoordinatesToCellName(5, row)
		priceEnd, _ := excelize.CoordinatesToCellName(6, row)
		f.SetCellStyle(sheet, priceStart, priceEnd, moneyStyle)
		row++
	}

	row++
	f.SetCellValue(sheet, fmt.Sprintf("E%d", row), "Subtotal excl. VAT")
	f.SetCellValue(sheet, fmt.Sprintf("F%d", row), eq.SubtotalExclVat)
	f.SetCellValue(sheet, fmt.Sprintf("E%d", row+1), fmt.Sprintf("VAT %.0f%%", eq.VatRate*100))
	f.SetCellValue(sheet, fmt.Sprintf("F%d", row+1), eq.VatAmount)
	f.SetCellValue(sheet, fmt.Sprintf("E%d", row+2), "Total incl. VAT")
	f.SetCellValue(sheet, fmt.Sprintf("F%d", row+2), eq.TotalInclVat)
	f.SetCellStyle(sheet, fmt.Sprintf("E%d", row+2), fmt.Sprintf("F%d", row+2), boldStyle)
	f.SetCellStyle(sheet, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row+2), moneyStyle)

	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "B", "B", 40)
	f.SetColWidth(sheet, "E", "F", 16)
	f.SetColWidth(sheet, "L", "L", 32)

	return f, nil
}

func boolMark(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

// ExportItemsCSV writes the equipment lines as comma-separated UTF-8.
func (s *ExportService) ExportItemsCSV(eq *entity.Equipment) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"category", "name", "quantity", "unit", "unit_price_excl_vat", "is_standard", "is_optional", "is_included", "ce_relevant", "safety_critical", "notes"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, item := range eq.Items {
		record := []string{
			item.Category,
			item.Name,
			strconv.FormatFloat(item.Quantity, 'f', -1, 64),
			item.Unit,
			strconv.FormatFloat(item.UnitPriceExclVat, 'f', 2, 64),
			csvBool(item.IsStandard),
			csvBool(item.IsOptional),
			csvBool(item.IsIncluded),
			csvBool(item.CERelevant),
			csvBool(item.SafetyCritical),
			item.Notes,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func csvBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// csvColumns maps the header names we accept to canonical column keys.
// Excel exports from the old sheet use Dutch headers; both are recognized.
var csvColumns = map[string]string{
	"category":            "category",
	"categorie":           "category",
	"name":                "name",
	"naam":                "name",
	"omschrijving":        "name",
	"description":         "name",
	"quantity":            "quantity",
	"qty":                 "quantity",
	"aantal":              "quantity",
	"unit":                "unit",
	"eenheid":             "unit",
	"unit_price_excl_vat": "price",
	"unit price":          "price",
	"price":               "price",
	"stukprijs":           "price",
	"prijs":               "price",
	"is_standard":         "standard",
	"standard":            "standard",
	"standaard":           "standard",
	"is_optional":         "optional",
	"optional":            "optional",
	"optie":               "optional",
	"is_included":         "included",
	"included":            "included",
	"inbegrepen":          "included",
	"ce_relevant":         "ce",
	"ce":                  "ce",
	"safety_critical":     "safety",
	"safety":              "safety",
	"veiligheid":          "safety",
	"notes":               "notes",
	"opmerkingen":         "notes",
}

// ParseItemsCSV reads an uploaded equipment CSV into item requests. The
// delimiter is sniffed from the header line (comma or semicolon), headers are
// matched case-insensitively against known English and Dutch names, and input
// that is not valid UTF-8 is decoded as Windows-1252.
func (s *ExportService) ParseItemsCSV(r io.Reader) ([]AddItemRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("decode csv: %w", err)
		}
		data = decoded
	}

	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	delimiter := ','
	if bytes.Count(firstLine, []byte{';'}) > bytes.Count(firstLine, []byte{','}) {
		delimiter = ';'
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := make(map[int]string, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := csvColumns[key]; ok {
			columns[i] = canonical
		}
	}
	if !hasColumn(columns, "name") {
		return nil, fmt.Errorf("csv has no recognizable name column")
	}

	var items []AddItemRequest
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		var req AddItemRequest
		included := true
		empty := true
		for i, raw := range record {
			value := strings.TrimSpace(raw)
			if value != "" {
				empty = false
			}
			switch columns[i] {
			case "category":
				req.Category = value
			case "name":
				req.Name = value
			case "quantity":
				if value != "" {
					q, err := parseDecimal(value)
					if err != nil {
						return nil, fmt.Errorf("csv line %d: bad quantity %q", line, value)
					}
					req.Quantity = q
				}
			case "unit":
				req.Unit = value
			case "price":
				if value != "" {
					p, err := parseDecimal(value)
					if err != nil {
						return nil, fmt.Errorf("csv line %d: bad price %q", line, value)
					}
					req.UnitPriceExclVat = p
				}
			case "standard":
				req.IsStandard = parseFlag(value)
			case "optional":
				req.IsOptional = parseFlag(value)
			case "included":
				if value != "" {
					included = parseFlag(value)
				}
			case "ce":
				req.CERelevant = parseFlag(value)
			case "safety":
				req.SafetyCritical = parseFlag(value)
			case "notes":
				req.Notes = value
			}
		}
		if empty || req.Name == "" {
			continue
		}
		if req.Category == "" {
			req.Category = "general"
		}
		req.IsIncluded = &included
		items = append(items, req)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("csv contains no items")
	}
	return items, nil
}

func hasColumn(columns map[int]string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

// parseDecimal accepts both "1234.50" and the Dutch "1.234,50".
func parseDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return strconv.ParseFloat(s, 64)
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "ja", "y", "x":
		return true
	}
	return false
}
