package uploads

import "context"

// Repository port for upload persistence. The orchestrator only mirrors
// status; creation and listing belong to the upload CRUD collaborators.
type Repository interface {
	Get(ctx context.Context, tenant string, id UploadID) (*Upload, error)
	UpdateStatus(ctx context.Context, tenant string, id UploadID, status Status) error
}
