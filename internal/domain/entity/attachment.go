package entity

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Attachment kind constants, derived from the original filename extension.
const (
	AttachmentKindImage = "IMAGE"
	AttachmentKindPDF   = "PDF"
	AttachmentKindOther = "OTHER"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// Attachment is a file attached to a reimbursement request. Attachments are
// soft-deleted only; inactive rows stay in the table but are filtered out of
// default listings.
type Attachment struct {
	ID               int64     `json:"id"`
	RequestID        string    `json:"request_id"`
	StoredFilename   string    `json:"stored_filename"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	SizeBytes        int64     `json:"size_bytes"`
	StoragePath      string    `json:"storage_path"`
	Description      string    `json:"description,omitempty"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
}

// Kind classifies the attachment by its original filename extension,
// case-insensitively.
func (a *Attachment) Kind() string {
	return ClassifyFilename(a.OriginalFilename)
}

// IsImage returns true for image attachments.
func (a *Attachment) IsImage() bool {
	return a.Kind() == AttachmentKindImage
}

// IsPDF returns true for PDF attachments.
func (a *Attachment) IsPDF() bool {
	return a.Kind() == AttachmentKindPDF
}

// HumanSize returns the attachment size formatted for display.
func (a *Attachment) HumanSize() string {
	return FormatSize(a.SizeBytes)
}

// ClassifyFilename maps a filename to an attachment kind based on its
// extension only.
func ClassifyFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case imageExtensions[ext]:
		return AttachmentKindImage
	case ext == ".pdf":
		return AttachmentKindPDF
	default:
		return AttachmentKindOther
	}
}

// FormatSize renders a byte count for display: plain bytes below 1 KB, one
// decimal above (1024-based units).
func FormatSize(sizeBytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case sizeBytes < kb:
		return fmt.Sprintf("%d B", sizeBytes)
	case sizeBytes < mb:
		return fmt.Sprintf("%.1f KB", float64(sizeBytes)/kb)
	case sizeBytes < gb:
		return fmt.Sprintf("%.1f MB", float64(sizeBytes)/mb)
	default:
		return fmt.Sprintf("%.1f GB", float64(sizeBytes)/gb)
	}
}
