// Package export renders payment listings as CSV and XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"bistro/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName  = "Payments"
	dateLayout = "2006-01-02 15:04"
)

var header = []string{"Order #", "Date", "Customer", "Email", "Phone", "Items", "Total", "Status", "Pickup Time"}

// Filename returns the download name for an export created at now.
func Filename(now time.Time, ext string) string {
	return fmt.Sprintf("transactions_%s.%s", now.Format("2006-01-02"), ext)
}

func itemsSummary(order *model.Order) string {
	parts := make([]string, 0, len(order.Items))
	for _, it := range order.Items {
		parts = append(parts, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
	}
	return strings.Join(parts, ", ")
}

func record(order *model.Order) []string {
	return []string{
		order.ShortNumber(),
		order.CreatedAt.Format(dateLayout),
		order.Name,
		order.Email,
		order.Phone,
		itemsSummary(order),
		order.Total.StringFixed(2),
		order.Status.Label(),
		order.PickupTime.Format(dateLayout),
	}
}

// WriteCSV writes orders as CSV with a header row.
func WriteCSV(w io.Writer, orders []model.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range orders {
		if err := cw.Write(record(&orders[i])); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes orders as a single-sheet workbook. Totals are numeric cells.
func WriteXLSX(w io.Writer, orders []model.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, title := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i := range orders {
		row := i + 2
		values := record(&orders[i])
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			var value any = v
			if col == 6 {
				value, _ = orders[i].Total.Float64()
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "E", 22)
	_ = f.SetColWidth(sheetName, "F", "F", 50)
	_ = f.SetColWidth(sheetName, "G", "I", 18)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
