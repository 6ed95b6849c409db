package uploads

import "time"

// UploadID identifier type
type UploadID string

// Status enum for an uploaded plan file's pipeline progress.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusAnalyzed   Status = "analyzed"
	StatusFailed     Status = "failed"
)

// Upload references a plan file in object storage. The pipeline treats the
// storage details as opaque and hands them to the extraction stage.
type Upload struct {
	ID         UploadID  `json:"id"`
	TenantID   string    `json:"tenant_id"`
	ProjectID  string    `json:"project_id,omitempty"`
	StorageKey string    `json:"storage_key"`
	FileName   string    `json:"file_name,omitempty"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	Status     Status    `json:"status"`
	UploadedAt time.Time `json:"uploaded_at"`
}
