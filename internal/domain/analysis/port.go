package analysis

import "context"

// Repository port for analysis persistence. Save upserts by ID; the
// orchestrator calls it once to create the processing row and once more for
// the single terminal transition.
type Repository interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, tenant string, id AnalysisID) (*Record, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Record, error)
	LatestByUpload(ctx context.Context, tenant string, uploadID string) (*Record, error)
}
