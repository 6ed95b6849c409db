package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/permitpro/permitpro/internal/domain/analysis"
	"github.com/permitpro/permitpro/internal/domain/document"
	"github.com/permitpro/permitpro/internal/domain/rules"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const analysisColumns = `
id, tenant_id, upload_id, project_id, user_id, status,
ai_service_mode, pipeline_version,
approval_readiness_score, risk_level,
compliance_flags, missing_information, rejection_risks, recommendations,
extracted_data, rule_results, llm_interpretation,
processing_time_ms, error_message, created_at, completed_at`

// Save upserts the analysis record. Report payloads are stored as JSONB so
// report rendering reads them back verbatim.
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	const q = `
INSERT INTO analyses
(id, tenant_id, upload_id, project_id, user_id, status,
 ai_service_mode, pipeline_version,
 approval_readiness_score, risk_level,
 compliance_flags, missing_information, rejection_risks, recommendations,
 extracted_data, rule_results, llm_interpretation,
 processing_time_ms, error_message, created_at, completed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 approval_readiness_score = EXCLUDED.approval_readiness_score,
 risk_level = EXCLUDED.risk_level,
 compliance_flags = EXCLUDED.compliance_flags,
 missing_information = EXCLUDED.missing_information,
 rejection_risks = EXCLUDED.rejection_risks,
 recommendations = EXCLUDED.recommendations,
 extracted_data = EXCLUDED.extracted_data,
 rule_results = EXCLUDED.rule_results,
 llm_interpretation = EXCLUDED.llm_interpretation,
 processing_time_ms = EXCLUDED.processing_time_ms,
 error_message = EXCLUDED.error_message,
 completed_at = EXCLUDED.completed_at;`

	flags, err := marshalOrNull(a.ComplianceFlags != nil, a.ComplianceFlags)
	if err != nil {
		return err
	}
	missing, err := marshalOrNull(a.MissingInformation != nil, a.MissingInformation)
	if err != nil {
		return err
	}
	risks, err := marshalOrNull(a.RejectionRisks != nil, a.RejectionRisks)
	if err != nil {
		return err
	}
	recs, err := marshalOrNull(a.Recommendations != nil, a.Recommendations)
	if err != nil {
		return err
	}
	extracted, err := marshalOrNull(a.ExtractedData != nil, a.ExtractedData)
	if err != nil {
		return err
	}
	results, err := marshalOrNull(a.RuleResults != nil, a.RuleResults)
	if err != nil {
		return err
	}

	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err = r.db.ExecContext(ctx, q,
		a.ID, a.TenantID, a.UploadID, nullIfEmpty(a.ProjectID), nullIfEmpty(a.UserID), a.Status,
		a.AIServiceMode, a.PipelineVersion,
		nullFloat(a.Score), nullIfEmpty(string(a.RiskLevel)),
		flags, missing, risks, recs,
		extracted, results, nullIfEmpty(a.LLMInterpretation),
		a.ProcessingTimeMS, nullIfEmpty(a.ErrorMessage), created, a.CompletedAt,
	)
	return err
}

// Get by ID + tenant.
func (r *AnalysisRepository) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Record, error) {
	const q = `SELECT ` + analysisColumns + ` FROM analyses WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	return scanAnalysis(r.db.QueryRowContext(ctx, q, tenant, id))
}

// Latest analyses per tenant.
func (r *AnalysisRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `SELECT ` + analysisColumns + ` FROM analyses WHERE tenant_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LatestByUpload returns the most recent analysis for one upload.
func (r *AnalysisRepository) LatestByUpload(ctx context.Context, tenant string, uploadID string) (*domain.Record, error) {
	const q = `SELECT ` + analysisColumns + ` FROM analyses WHERE tenant_id=$1 AND upload_id=$2 ORDER BY created_at DESC, id DESC LIMIT 1;`
	return scanAnalysis(r.db.QueryRowContext(ctx, q, tenant, uploadID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*domain.Record, error) {
	var (
		a          domain.Record
		projectID  sql.NullString
		userID     sql.NullString
		score      sql.NullFloat64
		riskLevel  sql.NullString
		flags      []byte
		missing    []byte
		risks      []byte
		recs       []byte
		extracted  []byte
		results    []byte
		interp     sql.NullString
		errMsg     sql.NullString
		completed  sql.NullTime
	)
	if err := row.Scan(
		&a.ID, &a.TenantID, &a.UploadID, &projectID, &userID, &a.Status,
		&a.AIServiceMode, &a.PipelineVersion,
		&score, &riskLevel,
		&flags, &missing, &risks, &recs,
		&extracted, &results, &interp,
		&a.ProcessingTimeMS, &errMsg, &a.CreatedAt, &completed,
	); err != nil {
		return nil, err
	}

	a.ProjectID = projectID.String
	a.UserID = userID.String
	if score.Valid {
		v := score.Float64
		a.Score = &v
	}
	a.RiskLevel = domain.RiskLevel(riskLevel.String)
	a.LLMInterpretation = interp.String
	a.ErrorMessage = errMsg.String
	if completed.Valid {
		t := completed.Time
		a.CompletedAt = &t
	}

	if err := unmarshalInto(flags, &a.ComplianceFlags); err != nil {
		return nil, err
	}
	if err := unmarshalInto(missing, &a.MissingInformation); err != nil {
		return nil, err
	}
	if err := unmarshalInto(risks, &a.RejectionRisks); err != nil {
		return nil, err
	}
	if err := unmarshalInto(recs, &a.Recommendations); err != nil {
		return nil, err
	}
	if len(extracted) > 0 {
		var doc document.StructuredDocument
		if err := json.Unmarshal(extracted, &doc); err != nil {
			return nil, err
		}
		doc.Normalize()
		a.ExtractedData = &doc
	}
	if len(results) > 0 {
		var rr []rules.Result
		if err := json.Unmarshal(results, &rr); err != nil {
			return nil, err
		}
		a.RuleResults = rr
	}
	return &a, nil
}

func marshalOrNull(present bool, v any) (any, error) {
	if !present {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func unmarshalInto(b []byte, dst any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
