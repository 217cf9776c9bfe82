package reporting

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const lowStockSheet = "Low Stock"

var lowStockColumns = []struct {
	title string
	width float64
}{
	{"Product", 32},
	{"SKU", 18},
	{"Brand", 16},
	{"Model", 16},
	{"Variant", 12},
	{"Category", 18},
	{"Stock", 10},
	{"Reorder Level", 14},
	{"Status", 14},
	{"Vendor", 22},
	{"Vendor Mobile", 18},
	{"Location", 18},
}

// WriteLowStockWorkbook renders the low-stock listing as an XLSX workbook.
func (s *Service) WriteLowStockWorkbook(ctx context.Context, w io.Writer) (int, error) {
	items, err := s.LowStock(ctx)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", lowStockSheet); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("create header style: %w", err)
	}

	for i, col := range lowStockColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(lowStockSheet, cell, col.title); err != nil {
			return 0, fmt.Errorf("write header: %w", err)
		}
		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(lowStockSheet, colName, colName, col.width); err != nil {
			return 0, fmt.Errorf("set column width: %w", err)
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(lowStockColumns), 1)
	if err := f.SetCellStyle(lowStockSheet, "A1", lastHeader, headerStyle); err != nil {
		return 0, fmt.Errorf("style header: %w", err)
	}

	for i, item := range items {
		p := item.Product
		location := p.WarehouseLocation
		if p.RackNumber != "" || p.BinNumber != "" {
			location = strings.TrimSpace(fmt.Sprintf("%s %s/%s", location, p.RackNumber, p.BinNumber))
		}

		row := []interface{}{
			p.ProductName,
			p.DisplaySKU(),
			item.BrandName,
			item.ModelName,
			item.VariantName,
			item.CategoryName,
			p.StockQty,
			p.ReorderLevel,
			string(p.Status),
			item.VendorName,
			item.VendorMobile,
			location,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(lowStockSheet, cell, &row); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return len(items), nil
}
