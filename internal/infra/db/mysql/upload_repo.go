package mysql

import (
	"context"
	"database/sql"

	domain "github.com/permitpro/permitpro/internal/domain/uploads"
)

type UploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Get by ID + tenant.
func (r *UploadRepository) Get(ctx context.Context, tenant string, id domain.UploadID) (*domain.Upload, error) {
	const q = `
SELECT id, tenant_id, project_id, storage_key, file_name, mime_type, size_bytes, status, uploaded_at
FROM uploads
WHERE tenant_id=? AND id=?
LIMIT 1;`
	var (
		u         domain.Upload
		projectID sql.NullString
		fileName  sql.NullString
	)
	if err := r.db.QueryRowContext(ctx, q, tenant, id).Scan(
		&u.ID, &u.TenantID, &projectID, &u.StorageKey, &fileName,
		&u.MimeType, &u.SizeBytes, &u.Status, &u.UploadedAt,
	); err != nil {
		return nil, err
	}
	u.ProjectID = projectID.String
	u.FileName = fileName.String
	return &u, nil
}

// UpdateStatus mirrors pipeline progress onto the upload row. The DSN sets
// clientFoundRows, so RowsAffected counts matched rows and zero means the
// upload does not exist.
func (r *UploadRepository) UpdateStatus(ctx context.Context, tenant string, id domain.UploadID, status domain.Status) error {
	const q = `UPDATE uploads SET status=? WHERE tenant_id=? AND id=?;`
	res, err := r.db.ExecContext(ctx, q, status, tenant, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
