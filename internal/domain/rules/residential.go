package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/permitpro/permitpro/internal/domain/document"
)

// Residential building code catalog, based on common IRC (International
// Residential Code) requirements. Rules are independent and evaluated in
// declaration order. Jurisdiction-specific catalogs would be loaded in place
// of this one; the engine only sees the slice.

const (
	minHabitableRoomArea = 70.0
	minPrimaryBedroom    = 120.0
	minFrontSetback      = 20.0
	minSideSetback       = 5.0
	minRearSetback       = 10.0
	maxLotCoverage       = 0.50
	maxBuildingHeight    = 35.0
	minBathroomArea      = 30.0
)

// nonHabitable room name markers excluded from the habitable-area check.
var nonHabitable = []string{"Bathroom", "Garage", "Closet", "Hallway"}

// Residential returns the default catalog. A fresh slice is returned so a
// caller cannot mutate the package's rule set.
func Residential() []Rule {
	return []Rule{
		{
			ID:          "MIN_ROOM_SIZE",
			Code:        "IRC R304.1",
			Category:    "Room Dimensions",
			Description: "Habitable rooms must have a minimum area of 70 sq ft",
			Severity:    SeverityHigh,
			Check:       checkMinRoomSize,
		},
		{
			ID:          "MIN_BEDROOM_SIZE",
			Code:        "IRC R304.2",
			Category:    "Room Dimensions",
			Description: "At least one bedroom must have a minimum area of 120 sq ft",
			Severity:    SeverityHigh,
			Check:       checkMinBedroomSize,
		},
		{
			ID:          "MIN_CEILING_HEIGHT",
			Code:        "IRC R305.1",
			Category:    "Room Dimensions",
			Description: "Habitable rooms require minimum 7ft ceiling height",
			Severity:    SeverityMedium,
			Check: func(*document.StructuredDocument) Outcome {
				// Ceiling heights rarely survive plan extraction; advisory only.
				return Outcome{
					Passed: true,
					Notes:  []string{"Ceiling height not explicitly specified in extracted data — verify on plans"},
				}
			},
		},
		{
			ID:          "SETBACK_FRONT",
			Code:        "ZONING",
			Category:    "Setbacks",
			Description: "Front setback must meet zoning minimum (typically 20ft for residential)",
			Severity:    SeverityCritical,
			Check:       checkFrontSetback,
		},
		{
			ID:          "SETBACK_SIDE",
			Code:        "ZONING",
			Category:    "Setbacks",
			Description: "Side setbacks must meet zoning minimum (typically 5ft)",
			Severity:    SeverityCritical,
			Check:       checkSideSetbacks,
		},
		{
			ID:          "SETBACK_REAR",
			Code:        "ZONING",
			Category:    "Setbacks",
			Description: "Rear setback must meet zoning minimum (typically 10ft)",
			Severity:    SeverityHigh,
			Check:       checkRearSetback,
		},
		{
			ID:          "LOT_COVERAGE",
			Code:        "ZONING",
			Category:    "Site Coverage",
			Description: "Lot coverage must not exceed maximum (typically 50%)",
			Severity:    SeverityHigh,
			Check:       checkLotCoverage,
		},
		{
			ID:          "BUILDING_HEIGHT",
			Code:        "IRC R301.3 / ZONING",
			Category:    "Height",
			Description: "Building height must not exceed maximum (typically 35ft for residential)",
			Severity:    SeverityCritical,
			Check:       checkBuildingHeight,
		},
		{
			ID:          "BATHROOM_MIN_SIZE",
			Code:        "IRC P2705",
			Category:    "Room Dimensions",
			Description: "Bathrooms require minimum 30 sq ft",
			Severity:    SeverityMedium,
			Check:       checkBathroomMinSize,
		},
		{
			ID:          "EGRESS_WINDOW",
			Code:        "IRC R310.1",
			Category:    "Safety",
			Description: "Sleeping rooms require emergency egress windows",
			Severity:    SeverityHigh,
			Check: func(*document.StructuredDocument) Outcome {
				return Outcome{
					Passed: true,
					Notes:  []string{"Egress window compliance cannot be fully verified from floor plan — verify window schedules"},
				}
			},
		},
	}
}

func checkMinRoomSize(doc *document.StructuredDocument) Outcome {
	var violations []string
	for _, room := range doc.Rooms {
		if isNonHabitable(room.Name) {
			continue
		}
		if room.Area < minHabitableRoomArea {
			violations = append(violations,
				fmt.Sprintf("%s is %s sq ft (minimum 70 sq ft required)", room.Name, num(room.Area)))
		}
	}
	return Outcome{Passed: len(violations) == 0, Violations: violations}
}

func checkMinBedroomSize(doc *document.StructuredDocument) Outcome {
	for _, room := range doc.Rooms {
		if strings.Contains(strings.ToLower(room.Name), "bedroom") && room.Area >= minPrimaryBedroom {
			return Outcome{Passed: true}
		}
	}
	return Outcome{
		Passed:     false,
		Violations: []string{"No bedroom meets the 120 sq ft minimum for a primary bedroom"},
	}
}

func checkFrontSetback(doc *document.StructuredDocument) Outcome {
	front := doc.Setbacks.Front
	if front == nil {
		return Outcome{Passed: false, Violations: []string{"Front setback not specified"}}
	}
	if *front < minFrontSetback {
		return Outcome{
			Passed:     false,
			Violations: []string{fmt.Sprintf("Front setback is %sft (minimum 20ft required)", num(*front))},
		}
	}
	return Outcome{Passed: true}
}

func checkSideSetbacks(doc *document.StructuredDocument) Outcome {
	var violations []string
	left, right := doc.Setbacks.Left, doc.Setbacks.Right
	if left != nil && *left < minSideSetback {
		violations = append(violations, fmt.Sprintf("Left side setback is %sft (minimum 5ft)", num(*left)))
	}
	if right != nil && *right < minSideSetback {
		violations = append(violations, fmt.Sprintf("Right side setback is %sft (minimum 5ft)", num(*right)))
	}
	if left == nil {
		violations = append(violations, "Left side setback not specified")
	}
	if right == nil {
		violations = append(violations, "Right side setback not specified")
	}
	return Outcome{Passed: len(violations) == 0, Violations: violations}
}

func checkRearSetback(doc *document.StructuredDocument) Outcome {
	rear := doc.Setbacks.Rear
	if rear == nil {
		return Outcome{Passed: false, Violations: []string{"Rear setback not specified"}}
	}
	if *rear < minRearSetback {
		return Outcome{
			Passed:     false,
			Violations: []string{fmt.Sprintf("Rear setback is %sft (minimum 10ft required)", num(*rear))},
		}
	}
	return Outcome{Passed: true}
}

func checkLotCoverage(doc *document.StructuredDocument) Outcome {
	coverage := doc.Dimensions.LotCoverage
	if coverage == nil {
		return Outcome{Passed: false, Violations: []string{"Lot coverage percentage not specified"}}
	}
	if *coverage > maxLotCoverage {
		return Outcome{
			Passed:     false,
			Violations: []string{fmt.Sprintf("Lot coverage is %.0f%% (maximum 50%%)", *coverage*100)},
		}
	}
	return Outcome{Passed: true}
}

func checkBuildingHeight(doc *document.StructuredDocument) Outcome {
	height := doc.Dimensions.Height
	if height == nil {
		return Outcome{Passed: false, Violations: []string{"Building height not specified"}}
	}
	if *height > maxBuildingHeight {
		return Outcome{
			Passed:     false,
			Violations: []string{fmt.Sprintf("Building height is %sft (maximum 35ft)", num(*height))},
		}
	}
	return Outcome{Passed: true}
}

func checkBathroomMinSize(doc *document.StructuredDocument) Outcome {
	var violations []string
	for _, room := range doc.Rooms {
		if !strings.Contains(strings.ToLower(room.Name), "bathroom") {
			continue
		}
		if room.Area < minBathroomArea {
			violations = append(violations,
				fmt.Sprintf("%s is %s sq ft (minimum 30 sq ft)", room.Name, num(room.Area)))
		}
	}
	return Outcome{Passed: len(violations) == 0, Violations: violations}
}

func isNonHabitable(name string) bool {
	for _, marker := range nonHabitable {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// num renders a measurement without trailing zeros ("48", "12.5"), matching
// the canonical violation message format.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
