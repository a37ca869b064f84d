package services

import (
	"bytes"
	"fmt"

	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/xuri/excelize/v2"
)

var rentExportHeaders = []string{"Room", "Name", "Phone", "Coaching", "Monthly Rent", "Due Day", "Amount Paid", "Paid Date", "Method", "Status"}

var rentExportWidths = []float64{10, 28, 16, 16, 14, 10, 14, 14, 16, 12}

// ExportRentStatus renders a month's rent status as an XLSX workbook
func ExportRentStatus(status *models.RentStatus) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Rent " + string(status.Month)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range rentExportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header %s: %w", header, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header %s: %w", header, err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, name, name, rentExportWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range status.Students {
		var paid interface{} = ""
		paidDate, method := "", ""
		if row.Payment != nil {
			paid = row.Payment.AmountPaid
			if row.Payment.PaidDate.Valid {
				paidDate = row.Payment.PaidDate.Time.Format("2006-01-02")
			}
			method = string(row.Payment.PaymentMethod)
		}
		values := []interface{}{row.Room, row.Name, row.Phone, row.Coaching, row.MonthlyRent, row.DueDay, paid, paidDate, method, string(row.Status)}
		for col, v := range values {
			if err := setCell(f, sheet, col+1, i+2, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
			}
		}
	}

	// Totals block below the roster
	totalsRow := len(status.Students) + 3
	totals := [][2]interface{}{
		{"Total Due", status.Stats.TotalDue},
		{"Total Paid", status.Stats.TotalPaid},
		{"Total Pending", status.Stats.TotalPending},
		{"Paid", status.Stats.PaidCount},
		{"Pending", status.Stats.PendingCount},
		{"Overdue", status.Stats.OverdueCount},
	}
	for i, t := range totals {
		if err := setCell(f, sheet, 1, totalsRow+i, t[0]); err != nil {
			return nil, err
		}
		if err := setCell(f, sheet, 2, totalsRow+i, t[1]); err != nil {
			return nil, err
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
