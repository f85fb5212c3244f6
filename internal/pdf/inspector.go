package pdf

import (
	"fmt"
	"os"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
)

// Inspector examines stored PDF payloads with mupdf
type Inspector struct {
	logger *zap.Logger
}

// NewInspector creates a new PDF inspector
func NewInspector(logger *zap.Logger) *Inspector {
	return &Inspector{logger: logger}
}

// PDFPageCount returns the number of pages of a stored PDF file
func (i *Inspector) PDFPageCount(absolutePath string) (int, error) {
	if _, err := os.Stat(absolutePath); os.IsNotExist(err) {
		return 0, fmt.Errorf("PDF file not found: %s", absolutePath)
	}

	doc, err := fitz.New(absolutePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	count := doc.NumPage()
	i.logger.Debug("Inspected PDF",
		zap.String("path", absolutePath),
		zap.Int("page_count", count))

	return count, nil
}

// Verify interface compliance
var _ port.AttachmentInspector = (*Inspector)(nil)
