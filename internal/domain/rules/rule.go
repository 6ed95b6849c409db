package rules

import (
	"github.com/permitpro/permitpro/internal/domain/document"
)

// Severity enum
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Outcome of a single rule check. Notes are advisory and never affect
// pass/fail; a rule that cannot be verified from extracted data passes with
// a note instead of failing.
type Outcome struct {
	Passed     bool
	Violations []string
	Notes      []string
}

// Rule is an immutable catalog entry. Check must be pure and side-effect
// free; it is evaluated against the same document as every other rule.
type Rule struct {
	ID          string
	Code        string
	Category    string
	Description string
	Severity    Severity
	Check       func(doc *document.StructuredDocument) Outcome
}

// Result flattens a rule's identity with its outcome for reporting.
type Result struct {
	RuleID      string   `json:"ruleId"`
	Code        string   `json:"code"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Passed      bool     `json:"passed"`
	Violations  []string `json:"violations"`
	Notes       []string `json:"notes"`
}
