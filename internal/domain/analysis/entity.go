package analysis

import (
	"time"

	"github.com/permitpro/permitpro/internal/domain/document"
	"github.com/permitpro/permitpro/internal/domain/rules"
)

// PipelineVersion stamped on every record, bumped when stage semantics change.
const PipelineVersion = "1.0.0"

// AnalysisID identifier type
type AnalysisID string

// Status enum. Completed and failed are terminal; a record in a terminal
// state is never mutated again.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// RiskLevel enum
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ComplianceFlag is a failed rule surfaced in the report, carrying the code
// citation and violation detail.
type ComplianceFlag struct {
	RuleID      string         `json:"ruleId"`
	Code        string         `json:"code"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Severity    rules.Severity `json:"severity"`
	Violations  []string       `json:"violations"`
}

// MissingInformation is a plan sheet or data point the permit office will
// require that was not found in the submitted set.
type MissingInformation struct {
	Item     string `json:"item"`
	Severity string `json:"severity"`
	Reason   string `json:"reason"`
}

// Recommendation with a priority of critical|high|medium|low.
type Recommendation struct {
	Priority string `json:"priority"`
	Text     string `json:"text"`
}

// RejectionRisk estimates one way the submission could be rejected.
type RejectionRisk struct {
	Risk        string `json:"risk"`
	Probability string `json:"probability"`
	Details     string `json:"details"`
}

// Interpretation is the interpretation stage output: the approval readiness
// score with its derived lists and the narrative summary.
type Interpretation struct {
	Score              float64              `json:"score"`
	RiskLevel          RiskLevel            `json:"riskLevel"`
	MissingInformation []MissingInformation `json:"missingInformation"`
	Recommendations    []Recommendation     `json:"recommendations"`
	RejectionRisks     []RejectionRisk      `json:"rejectionRisks"`
	Interpretation     string               `json:"interpretation"`
}

// Aggregate root: Record is one analysis run over one upload. Result fields
// are nil/empty until the run reaches completed; a failed run carries only
// ErrorMessage. The JSON field names are the stable contract consumed by
// report rendering and the UI.
type Record struct {
	ID              AnalysisID `json:"id"`
	TenantID        string     `json:"tenant_id"`
	UploadID        string     `json:"upload_id"`
	ProjectID       string     `json:"project_id,omitempty"`
	UserID          string     `json:"user_id,omitempty"`
	Status          Status     `json:"status"`
	AIServiceMode   string     `json:"ai_service_mode,omitempty"`
	PipelineVersion string     `json:"pipeline_version,omitempty"`

	Score              *float64                     `json:"approval_readiness_score,omitempty"`
	RiskLevel          RiskLevel                    `json:"risk_level,omitempty"`
	ComplianceFlags    []ComplianceFlag             `json:"compliance_flags,omitempty"`
	MissingInformation []MissingInformation         `json:"missing_information,omitempty"`
	RejectionRisks     []RejectionRisk              `json:"rejection_risks,omitempty"`
	Recommendations    []Recommendation             `json:"recommendations,omitempty"`
	ExtractedData      *document.StructuredDocument `json:"extracted_data,omitempty"`
	RuleResults        []rules.Result               `json:"rule_results,omitempty"`
	LLMInterpretation  string                       `json:"llm_interpretation,omitempty"`
	ProcessingTimeMS   int64                        `json:"processing_time_ms"`
	ErrorMessage       string                       `json:"error_message,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Terminal reports whether the record has reached a final state.
func (r *Record) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// FlagsFromResults derives compliance flags from failed rule results,
// preserving result order.
func FlagsFromResults(results []rules.Result) []ComplianceFlag {
	flags := []ComplianceFlag{}
	for _, res := range results {
		if res.Passed {
			continue
		}
		flags = append(flags, ComplianceFlag{
			RuleID:      res.RuleID,
			Code:        res.Code,
			Category:    res.Category,
			Description: res.Description,
			Severity:    res.Severity,
			Violations:  res.Violations,
		})
	}
	return flags
}
