package port

// FileStorage stores attachment and report payloads on disk (or wherever the
// implementation points). Paths are relative to the storage base directory.
type FileStorage interface {
	Save(relativePath string, content []byte) (absolutePath string, err error)
	Remove(relativePath string) error
	AbsolutePath(relativePath string) (string, error)
}

// AttachmentInspector examines stored attachment payloads. Inspection is
// best-effort metadata: failures are logged, never surfaced to the uploader.
type AttachmentInspector interface {
	// PDFPageCount returns the number of pages of a stored PDF file.
	PDFPageCount(absolutePath string) (int, error)
}
