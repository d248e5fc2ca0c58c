package settlement

import (
	"bytes"
	"fmt"
	"time"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
	"github.com/xuri/excelize/v2"
)

// BuildSheetWorkbook renders preview sheets as an XLSX workbook for the
// back-office accountant: one summary row per partner sheet, one detail row
// per contributing allocation.
func BuildSheetWorkbook(flow waybill.Flow, result *PreviewResult) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "sheets"
	detailSheet := "details"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(detailSheet); err != nil {
		return nil, fmt.Errorf("failed to create detail sheet: %w", err)
	}

	title := "Invoice Settlement Preview"
	if flow == waybill.FlowPayment {
		title = "Payment Settlement Preview"
	}
	_ = f.SetCellValue(summarySheet, "A1", title)
	_ = f.SetCellValue(summarySheet, "B1", time.Now().Format("2006-01-02 15:04"))

	headers := []string{"Partner", "Records", "Total Amount"}
	if flow == waybill.FlowInvoice {
		headers = append(headers, "Tax Number", "Company Address")
	} else {
		headers = append(headers, "Bank Account", "Bank Name", "Branch")
	}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 3)
		_ = f.SetCellValue(summarySheet, cell, h)
	}

	for i, sheet := range result.Sheets {
		row := i + 4
		values := []interface{}{sheet.PartnerName, sheet.RecordCount, sheet.TotalAmount.InexactFloat64()}
		if flow == waybill.FlowInvoice {
			values = append(values, sheet.TaxNumber, sheet.CompanyAddress)
		} else {
			values = append(values, sheet.BankAccount, sheet.BankName, sheet.BranchName)
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(summarySheet, cell, v)
		}
	}

	totalRow := len(result.Sheets) + 5
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", totalRow), "Grand Total")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", totalRow), len(result.ProcessedIDs))
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", totalRow), result.TotalAmount.InexactFloat64())

	_ = f.SetCellValue(detailSheet, "A1", "Partner")
	_ = f.SetCellValue(detailSheet, "B1", "Waybill Number")
	_ = f.SetCellValue(detailSheet, "C1", "Level")
	_ = f.SetCellValue(detailSheet, "D1", "Amount")
	detailRow := 2
	for _, sheet := range result.Sheets {
		for _, item := range sheet.Items {
			_ = f.SetCellValue(detailSheet, fmt.Sprintf("A%d", detailRow), sheet.PartnerName)
			_ = f.SetCellValue(detailSheet, fmt.Sprintf("B%d", detailRow), item.WaybillNumber)
			_ = f.SetCellValue(detailSheet, fmt.Sprintf("C%d", detailRow), item.Level)
			_ = f.SetCellValue(detailSheet, fmt.Sprintf("D%d", detailRow), item.Amount.InexactFloat64())
			detailRow++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
