package rules

import (
	"fmt"

	"github.com/permitpro/permitpro/internal/domain/document"
)

// Run evaluates every rule in catalog order against doc and returns one
// Result per rule, in the same order. It is total for well-formed input: a
// panic inside a single check is converted to a passing advisory outcome
// (cannot-verify is not a violation), so one misbehaving rule never aborts
// the rest of the run.
func Run(catalog []Rule, doc *document.StructuredDocument) []Result {
	results := make([]Result, len(catalog))
	for i, rule := range catalog {
		outcome := evaluate(rule, doc)
		results[i] = Result{
			RuleID:      rule.ID,
			Code:        rule.Code,
			Category:    rule.Category,
			Description: rule.Description,
			Severity:    rule.Severity,
			Passed:      outcome.Passed,
			Violations:  emptyIfNil(outcome.Violations),
			Notes:       emptyIfNil(outcome.Notes),
		}
	}
	return results
}

func evaluate(rule Rule, doc *document.StructuredDocument) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{
				Passed: true,
				Notes:  []string{fmt.Sprintf("Rule %s could not be evaluated from extracted data — verify manually", rule.ID)},
			}
		}
	}()
	return rule.Check(doc)
}

// emptyIfNil keeps the serialized report free of JSON nulls.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
