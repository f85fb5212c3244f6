package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/application/service"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

const sheetName = "Requests"

var headers = []string{
	"ID", "Employee ID", "Title", "Category", "Requested Amount",
	"Approved Amount", "Expense Date", "Status", "Created At",
}

// ExcelBuilder renders reimbursement requests into an xlsx workbook
type ExcelBuilder struct {
	logger *zap.Logger
}

// NewExcelBuilder creates a new Excel builder
func NewExcelBuilder(logger *zap.Logger) *ExcelBuilder {
	return &ExcelBuilder{logger: logger}
}

// BuildRequestsExcel writes one row per request under a header row and
// returns the workbook bytes.
func (b *ExcelBuilder) BuildRequestsExcel(ctx context.Context, requests []*entity.ReimbursementRequest) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build cell name: %w", err)
		}
		b.setCell(f, cell, header)
	}

	for rowIdx, request := range requests {
		row := rowIdx + 2

		approvedAmount := ""
		if request.ApprovedAmount != nil {
			approvedAmount = fmt.Sprintf("%.2f", *request.ApprovedAmount)
		}

		values := []interface{}{
			request.ID,
			request.EmployeeID,
			request.Title,
			request.Category.String(),
			request.RequestedAmount,
			approvedAmount,
			request.ExpenseDate.Format("2006-01-02"),
			request.Status.String(),
			request.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to build cell name: %w", err)
			}
			b.setCell(f, cell, value)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 38); err != nil {
		b.logger.Warn("Failed to set column width", zap.Error(err))
	}
	if err := f.SetColWidth(sheetName, "B", "I", 22); err != nil {
		b.logger.Warn("Failed to set column width", zap.Error(err))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	b.logger.Debug("Workbook built", zap.Int("row_count", len(requests)))
	return buf.Bytes(), nil
}

// setCell sets a cell value, logging instead of failing on a bad cell
func (b *ExcelBuilder) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		b.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

// Verify interface compliance
var _ service.ReportBuilder = (*ExcelBuilder)(nil)
