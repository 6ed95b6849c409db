package mysql

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

// Save upserts the analysis record. JSON columns require valid JSON or NULL.
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	const q = `
INSERT INTO analyses
(id, tenant_id, upload_id, project_id, user_id, status,
 ai_service_mode, pipeline_version,
 approval_readiness_score, risk_level,
 compliance_flags, missing_information, rejection_risks, recommendations,
 extracted_data, rule_results, llm_interpretation,
 processing_time_ms, error_message, created_at, completed_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 approval_readiness_score=VALUES(approval_readiness_score),
 risk_level=VALUES(risk_level),
 compliance_flags=VALUES(compliance_flags),
 missing_information=VALUES(missing_information),
 rejection_risks=VALUES(rejection_risks),
 recommendations=VALUES(recommendations),
 extracted_data=VALUES(extracted_data),
 rule_results=VALUES(rule_results),
 llm_interpretation=VALUES(llm_interpretation),
 processing_time_ms=VALUES(processing_time_ms),
 error_message=VALUES(error_message),
 completed_at=VALUES(completed_at);`

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

	var score any
	if a.Score != nil {
		score = *a.Score
	}

	_, err = r.db.ExecContext(ctx, q,
		a.ID, a.TenantID, a.UploadID, a.ProjectID, a.UserID, a.Status,
		a.AIServiceMode, a.PipelineVersion,
		score, string(a.RiskLevel),
		flags, missing, risks, recs,
		extracted, results, a.LLMInterpretation,
		a.ProcessingTimeMS, a.ErrorMessage, created, a.CompletedAt,
	)
	return err
}

// Get by ID + tenant.
func (r *AnalysisRepository) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Record, error) {
	const q = `SELECT ` + analysisColumns + ` FROM analyses WHERE tenant_id=? AND id=? LIMIT 1;`
	return scanAnalysis(r.db.QueryRowContext(ctx, q, tenant, id))
}

// Latest analyses per tenant.
func (r *AnalysisRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `SELECT ` + analysisColumns + ` FROM analyses WHERE tenant_id=? ORDER BY created_at DESC, id DESC LIMIT ?;`
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
	const q = `SELECT ` + analysisColumns + ` FROM analyses WHERE tenant_id=? AND upload_id=? ORDER BY created_at DESC, id DESC LIMIT 1;`
	return scanAnalysis(r.db.QueryRowContext(ctx, q, tenant, uploadID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*domain.Record, error) {
	var (
		a         domain.Record
		projectID sql.NullString
		userID    sql.NullString
		score     sql.NullFloat64
		riskLevel sql.NullString
		flags     []byte
		missing   []byte
		risks     []byte
		recs      []byte
		extracted []byte
		results   []byte
		interp    sql.NullString
		errMsg    sql.NullString
		completed sql.NullTime
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

	if len(flags) > 0 {
		if err := json.Unmarshal(flags, &a.ComplianceFlags); err != nil {
			return nil, err
		}
	}
	if len(missing) > 0 {
		if err := json.Unmarshal(missing, &a.MissingInformation); err != nil {
			return nil, err
		}
	}
	if len(risks) > 0 {
		if err := json.Unmarshal(risks, &a.RejectionRisks); err != nil {
			return nil, err
		}
	}
	if len(recs) > 0 {
		if err := json.Unmarshal(recs, &a.Recommendations); err != nil {
			return nil, err
		}
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
