package prompt

import (
	"encoding/json"
	"fmt"
)

// InterpretSystemPrompt provides strict directions and schema for JSON output
// from the live interpretation engine.
func InterpretSystemPrompt() string {
	return `You are a senior building plan examiner reviewing residential permit submissions. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- score is a number from 0 to 100 with at most one decimal place.
- riskLevel is one of: low, medium, high, critical.
- Use lowercase severity values: critical, high, medium, low.
- recommendations must end with exactly one low-priority entry.
- Be conservative: never report a violation the rule results do not support.

Schema (example with empty values):
{
  "score": 0,
  "riskLevel": "<low|medium|high|critical>",
  "missingInformation": [{"item": "<string>", "severity": "<string>", "reason": "<string>"}],
  "recommendations": [{"priority": "<critical|high|medium|low>", "text": "<string>"}],
  "rejectionRisks": [{"risk": "<string>", "probability": "<string>", "details": "<string>"}],
  "interpretation": "<string>"
}`
}

// InterpretUserPrompt packs the extracted document and rule results into one
// user message.
func InterpretUserPrompt(doc any, results any) (string, error) {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal extracted data: %w", err)
	}
	resJSON, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to marshal rule results: %w", err)
	}
	return fmt.Sprintf("Interpret this compliance check run and respond with the JSON per schema.\nExtracted data: %s\nRule results: %s", docJSON, resJSON), nil
}

// ExtractSystemPrompt directs the vision model to emit the structured
// document schema the rule engine consumes.
func ExtractSystemPrompt() string {
	return `You are an OCR engine for residential building plans. You must produce one valid JSON object only (no markdown, no commentary) following the schema below. Do not include code fences.

Requirements:
- rooms is always an array (empty if none detected); width, length and area are in feet / sq ft.
- Omit any setback or dimension field you cannot read from the plans; never write 0 for an unknown value.
- confidence is a number in [0,1].

Schema (example with empty values):
{
  "documentType": "floor_plan",
  "pageCount": 0,
  "extractedText": ["<string>"],
  "rooms": [{"name": "<string>", "width": 0, "length": 0, "area": 0}],
  "dimensions": {"totalArea": 0, "stories": 0, "height": 0, "lotCoverage": 0},
  "setbacks": {"front": 0, "left": 0, "right": 0, "rear": 0},
  "metadata": {"scale": "<string>", "hasElevations": false, "hasSitePlan": false, "hasFoundationPlan": false, "hasElectricalPlan": false, "hasMechanicalPlan": false},
  "confidence": 0
}`
}

// ExtractUserPrompt builds a compact user message around a plan file URL.
func ExtractUserPrompt(fileURL string) string {
	return fmt.Sprintf("Extract structured data from the building plan at this URL and respond with the JSON per schema. URL: %s", fileURL)
}
