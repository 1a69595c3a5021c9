package invoice

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"evcdr/backend/libs/cdr"
	"evcdr/backend/services/billing-service/internal/models"
)

// Supported invoice formats.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// ErrUnsupportedFormat is returned for unknown invoice formats.
var ErrUnsupportedFormat = errors.New("invoice: unsupported format")

// ContentType returns the MIME type of an invoice format.
func ContentType(format string) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// Render renders a CDR in the requested format.
func Render(format string, c *models.CDR) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatPDF, "":
		return BuildPDF(c)
	case FormatXLSX:
		return BuildXLSX(c)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

type line struct {
	label    string
	quantity func(c *models.CDR) string
	price    func(c *models.CDR) cdr.Price
}

var costLines = []line{
	{
		label:    "Fixed fee",
		quantity: func(*models.CDR) string { return "1" },
		price:    func(c *models.CDR) cdr.Price { return c.FixedCost },
	},
	{
		label:    "Energy",
		quantity: func(c *models.CDR) string { return formatKWh(c.BilledEnergyWh) + " kWh" },
		price:    func(c *models.CDR) cdr.Price { return c.EnergyCost },
	},
	{
		label:    "Charging time",
		quantity: func(c *models.CDR) string { return formatSeconds(c.BilledChargingTimeSeconds) },
		price:    func(c *models.CDR) cdr.Price { return c.ChargingTimeCost },
	},
	{
		label:    "Idle time",
		quantity: func(c *models.CDR) string { return formatSeconds(c.BilledIdleTimeSeconds) },
		price:    func(c *models.CDR) cdr.Price { return c.IdleTimeCost },
	},
}

func formatKWh(wh decimal.Decimal) string { return wh.Shift(-3).StringFixed(3) }

func formatSeconds(s float64) string {
	return time.Duration(s * float64(time.Second)).Round(time.Second).String()
}

// BuildPDF renders a one page PDF invoice for a CDR.
func BuildPDF(c *models.CDR) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Charging Invoice")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	if c.SessionID != 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Session: %d", c.SessionID))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Tariff: %s", c.TariffID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Start: %s", c.StartTime.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("End: %s", c.EndTime.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Energy delivered (kWh): %s", formatKWh(c.TotalEnergyWh)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(50, 6, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Quantity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Excl. tax", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Incl. tax", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, l := range costLines {
		p := l.price(c)
		pdf.CellFormat(50, 6, l.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, l.quantity(c), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, p.ExclTax.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, p.InclTax.String(), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 6, fmt.Sprintf("Total (%s)", c.Currency), "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 6, c.TotalCost.ExclTax.String(), "1", 0, "R", false, 0, "")
	pdf.CellFormat(45, 6, c.TotalCost.InclTax.String(), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildXLSX renders a CDR workbook with a summary and a periods sheet.
func BuildXLSX(c *models.CDR) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	periodsSheet := "periods"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(periodsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Charging Invoice")
	_ = f.SetCellValue(summarySheet, "A3", "Session")
	_ = f.SetCellValue(summarySheet, "B3", c.SessionID)
	_ = f.SetCellValue(summarySheet, "A4", "Tariff")
	_ = f.SetCellValue(summarySheet, "B4", c.TariffID)
	_ = f.SetCellValue(summarySheet, "A5", "Currency")
	_ = f.SetCellValue(summarySheet, "B5", c.Currency)
	_ = f.SetCellValue(summarySheet, "A6", "Start")
	_ = f.SetCellValue(summarySheet, "B6", c.StartTime.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A7", "End")
	_ = f.SetCellValue(summarySheet, "B7", c.EndTime.Format(time.RFC3339))

	_ = f.SetCellValue(summarySheet, "A9", "Item")
	_ = f.SetCellValue(summarySheet, "B9", "Quantity")
	_ = f.SetCellValue(summarySheet, "C9", "Excl. tax")
	_ = f.SetCellValue(summarySheet, "D9", "Incl. tax")
	row := 10
	for _, l := range costLines {
		p := l.price(c)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), l.label)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), l.quantity(c))
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), p.ExclTax.InexactFloat64())
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("D%d", row), p.InclTax.InexactFloat64())
		row++
	}
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Total")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), c.TotalCost.ExclTax.InexactFloat64())
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("D%d", row), c.TotalCost.InclTax.InexactFloat64())

	_ = f.SetCellValue(periodsSheet, "A1", "Start")
	_ = f.SetCellValue(periodsSheet, "B1", "End")
	_ = f.SetCellValue(periodsSheet, "C1", "Kind")
	_ = f.SetCellValue(periodsSheet, "D1", "Energy (kWh)")
	for i, p := range c.Periods {
		r := i + 2
		_ = f.SetCellValue(periodsSheet, fmt.Sprintf("A%d", r), p.Start.Format(time.RFC3339))
		_ = f.SetCellValue(periodsSheet, fmt.Sprintf("B%d", r), p.End.Format(time.RFC3339))
		_ = f.SetCellValue(periodsSheet, fmt.Sprintf("C%d", r), string(p.Kind))
		_ = f.SetCellValue(periodsSheet, fmt.Sprintf("D%d", r), p.EnergyWh.Shift(-3).InexactFloat64())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
