package reports

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type summaryExportRow struct {
	Label  string
	Amount decimal.Decimal
}

// BuildSummaryWorkbook renders the financial summary as a two-column sheet
// for the back-office export. Numbers are emitted as plain strings; the
// workbook is a report, not an input format.
func BuildSummaryWorkbook(summary *FinancialSummary) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Sheet1"
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, err
	}

	rows := []summaryExportRow{
		{"Initial Capital", summary.InitialCapital},
		{"Total Revenue", summary.TotalRevenue},
		{"Manager Revenue", summary.ManagerRevenue},
		{"Employee Revenue", summary.EmployeeRevenue},
		{"Total COGS", summary.TotalCOGS},
		{"Gross Profit", summary.GrossProfit},
		{"Manager Profit", summary.ManagerProfit},
		{"Employee Profit", summary.TotalEmployeeProfit},
		{"Employee Dues", summary.EmployeeDues},
		{"System Profit From Employees", summary.SystemProfitFromEmployees},
		{"Total System Profit", summary.TotalSystemProfit},
		{"General Expenses", summary.GeneralExpenses},
		{"Net Profit", summary.NetProfit},
		{"Total Purchases", summary.TotalPurchases},
		{"Inventory Value", summary.InventoryValue},
		{"Main Cash Balance", summary.MainCashBalance},
		{"Total Assets", summary.TotalAssets},
	}

	f.SetCellValue(sheet, "A1", "Metric")
	f.SetCellValue(sheet, "B1", "Amount")
	for i, row := range rows {
		f.SetCellValue(sheet, "A"+fmt.Sprint(i+2), row.Label)
		f.SetCellValue(sheet, "B"+fmt.Sprint(i+2), row.Amount.String())
	}

	f.SetCellValue(sheet, "D1", "Delivered Orders")
	f.SetCellValue(sheet, "E1", summary.DeliveredOrdersCount)
	f.SetCellValue(sheet, "D2", "Manager Orders")
	f.SetCellValue(sheet, "E2", summary.ManagerOrdersCount)
	f.SetCellValue(sheet, "D3", "Employee Orders")
	f.SetCellValue(sheet, "E3", summary.EmployeeOrdersCount)

	return f, nil
}
