package mock

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/permitpro/permitpro/internal/domain/analysis"
	"github.com/permitpro/permitpro/internal/domain/document"
	"github.com/permitpro/permitpro/internal/domain/rules"
)

// Interpreter derives the approval readiness report from rule results. The
// live LLM engine produces the same structure; this one is a pure function
// of its inputs.
type Interpreter struct{}

func NewInterpreter() *Interpreter { return &Interpreter{} }

func (i *Interpreter) Interpret(ctx context.Context, doc *document.StructuredDocument, results []rules.Result) (*analysis.Interpretation, error) {
	log.Printf("interpretation engine running [mode=mock]")

	var criticalCount, highCount, passedCount, noteCount int
	for _, r := range results {
		noteCount += len(r.Notes)
		if r.Passed {
			passedCount++
			continue
		}
		switch r.Severity {
		case rules.SeverityCritical:
			criticalCount++
		case rules.SeverityHigh:
			highCount++
		}
	}

	totalCount := len(results)
	baseScore := 0.0
	if totalCount > 0 {
		baseScore = float64(passedCount) / float64(totalCount) * 100
	}

	// Deduct extra for critical/high severity, floored at zero.
	penalized := math.Max(0, baseScore-float64(criticalCount)*15-float64(highCount)*5)
	score := math.Round(penalized*10) / 10

	riskLevel := analysis.RiskLow
	switch {
	case score < 50 || criticalCount >= 2:
		riskLevel = analysis.RiskCritical
	case score < 65 || criticalCount >= 1:
		riskLevel = analysis.RiskHigh
	case score < 80:
		riskLevel = analysis.RiskMedium
	}

	missing := missingInformation(doc)
	recommendations := recommend(criticalCount, noteCount, missing)
	rejectionRisks := rejectionRisks(criticalCount, highCount, len(missing))

	return &analysis.Interpretation{
		Score:              score,
		RiskLevel:          riskLevel,
		MissingInformation: missing,
		Recommendations:    recommendations,
		RejectionRisks:     rejectionRisks,
		Interpretation:     narrative(passedCount, totalCount, criticalCount, highCount, len(missing), score),
	}, nil
}

func missingInformation(doc *document.StructuredDocument) []analysis.MissingInformation {
	missing := []analysis.MissingInformation{}
	if !doc.Metadata.HasSitePlan {
		missing = append(missing, analysis.MissingInformation{Item: "Site Plan", Severity: "high", Reason: "Required for zoning verification"})
	}
	if !doc.Metadata.HasFoundationPlan {
		missing = append(missing, analysis.MissingInformation{Item: "Foundation Plan", Severity: "medium", Reason: "Required for structural review"})
	}
	if !doc.Metadata.HasElectricalPlan {
		missing = append(missing, analysis.MissingInformation{Item: "Electrical Plan", Severity: "medium", Reason: "Required for electrical permit"})
	}
	if !doc.Metadata.HasMechanicalPlan {
		missing = append(missing, analysis.MissingInformation{Item: "Mechanical Plan / HVAC", Severity: "medium", Reason: "Required for mechanical permit"})
	}
	return missing
}

func recommend(criticalCount, noteCount int, missing []analysis.MissingInformation) []analysis.Recommendation {
	recs := []analysis.Recommendation{}
	if criticalCount > 0 {
		recs = append(recs, analysis.Recommendation{
			Priority: "critical",
			Text:     "Address all critical zoning violations before submission. Plans with zoning non-compliance are rejected immediately.",
		})
	}
	if len(missing) > 0 {
		items := make([]string, len(missing))
		for i, m := range missing {
			items[i] = m.Item
		}
		recs = append(recs, analysis.Recommendation{
			Priority: "high",
			Text:     fmt.Sprintf("Include missing plan sheets: %s. Incomplete plan sets result in automatic rejection.", strings.Join(items, ", ")),
		})
	}
	if noteCount > 0 {
		recs = append(recs, analysis.Recommendation{
			Priority: "medium",
			Text:     "Review items flagged for manual verification. Some code compliance items cannot be determined from the floor plan alone.",
		})
	}
	recs = append(recs, analysis.Recommendation{
		Priority: "low",
		Text:     "Consider having a licensed architect stamp the final plans to expedite review.",
	})
	return recs
}

func rejectionRisks(criticalCount, highCount, missingCount int) []analysis.RejectionRisk {
	risks := []analysis.RejectionRisk{}
	if criticalCount > 0 {
		risks = append(risks, analysis.RejectionRisk{
			Risk:        "Zoning non-compliance",
			Probability: "very_high",
			Details:     fmt.Sprintf("%d critical zoning violation(s) detected", criticalCount),
		})
	}
	if missingCount >= 3 {
		risks = append(risks, analysis.RejectionRisk{
			Risk:        "Incomplete plan set",
			Probability: "high",
			Details:     "Multiple required plan sheets missing",
		})
	}
	if highCount > 2 {
		risks = append(risks, analysis.RejectionRisk{
			Risk:        "Multiple code violations",
			Probability: "high",
			Details:     fmt.Sprintf("%d high-severity issues found", highCount),
		})
	}
	return risks
}

func narrative(passed, total, criticalCount, highCount, missingCount int, score float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis of the submitted floor plan reveals %d of %d code checks passed. ", passed, total)
	if criticalCount > 0 {
		fmt.Fprintf(&b, "There are %d critical issue(s) that will likely result in immediate rejection. ", criticalCount)
	}
	if highCount > 0 {
		fmt.Fprintf(&b, "%d high-severity issue(s) should be addressed before submission. ", highCount)
	}
	if missingCount > 0 {
		fmt.Fprintf(&b, "The plan set appears to be missing %d required sheet(s). ", missingCount)
	}
	fmt.Fprintf(&b, "Overall approval readiness is scored at %s/100.", strconv.FormatFloat(score, 'f', -1, 64))
	return b.String()
}
