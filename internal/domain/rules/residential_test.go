package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permitpro/permitpro/internal/domain/document"
	"github.com/permitpro/permitpro/internal/domain/rules"
)

func resultByID(t *testing.T, results []rules.Result, id string) rules.Result {
	t.Helper()
	for _, r := range results {
		if r.RuleID == id {
			return r
		}
	}
	t.Fatalf("no result for rule %s", id)
	return rules.Result{}
}

func run(doc *document.StructuredDocument) []rules.Result {
	return rules.Run(rules.Residential(), doc)
}

func TestMinRoomSize(t *testing.T) {
	doc := compliantDoc()
	doc.Rooms = []document.Room{
		{Name: "Bedroom 1", Width: 10, Length: 12, Area: 120},
		{Name: "Den", Width: 8, Length: 8, Area: 64},
		{Name: "Closet", Width: 2, Length: 3, Area: 6},   // excluded
		{Name: "Garage", Width: 4, Length: 5, Area: 20},  // excluded
		{Name: "Hallway", Width: 3, Length: 10, Area: 30}, // excluded
		{Name: "Bathroom 1", Width: 5, Length: 8, Area: 40}, // excluded
	}

	res := resultByID(t, run(doc), "MIN_ROOM_SIZE")
	assert.False(t, res.Passed)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "Den is 64 sq ft (minimum 70 sq ft required)", res.Violations[0])
}

func TestMinRoomSizeBoundaryPasses(t *testing.T) {
	doc := compliantDoc()
	doc.Rooms = []document.Room{{Name: "Den", Width: 7, Length: 10, Area: 70}}

	res := resultByID(t, run(doc), "MIN_ROOM_SIZE")
	assert.True(t, res.Passed)
	assert.Empty(t, res.Violations)
}

func TestMinBedroomSize(t *testing.T) {
	tests := []struct {
		name   string
		rooms  []document.Room
		passed bool
	}{
		{"one bedroom at boundary", []document.Room{{Name: "Bedroom 1", Area: 120}}, true},
		{"case-insensitive match", []document.Room{{Name: "MASTER BEDROOM", Area: 224}}, true},
		{"all bedrooms undersized", []document.Room{{Name: "Bedroom 1", Area: 100}, {Name: "Bedroom 2", Area: 119}}, false},
		{"no bedrooms at all", []document.Room{{Name: "Kitchen", Area: 200}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := compliantDoc()
			doc.Rooms = tt.rooms
			res := resultByID(t, run(doc), "MIN_BEDROOM_SIZE")
			assert.Equal(t, tt.passed, res.Passed)
			if !tt.passed {
				assert.Equal(t, []string{"No bedroom meets the 120 sq ft minimum for a primary bedroom"}, res.Violations)
			}
		})
	}
}

func TestCeilingHeightAlwaysAdvisory(t *testing.T) {
	res := resultByID(t, run(&document.StructuredDocument{Rooms: []document.Room{}}), "MIN_CEILING_HEIGHT")
	assert.True(t, res.Passed)
	assert.Empty(t, res.Violations)
	require.Len(t, res.Notes, 1)
}

func TestFrontSetback(t *testing.T) {
	tests := []struct {
		name      string
		front     *float64
		passed    bool
		violation string
	}{
		{"boundary passes", document.Float(20), true, ""},
		{"below minimum", document.Float(15), false, "Front setback is 15ft (minimum 20ft required)"},
		{"absent is a violation", nil, false, "Front setback not specified"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := compliantDoc()
			doc.Setbacks.Front = tt.front
			res := resultByID(t, run(doc), "SETBACK_FRONT")
			assert.Equal(t, tt.passed, res.Passed)
			if tt.violation != "" {
				assert.Equal(t, []string{tt.violation}, res.Violations)
			}
		})
	}
}

func TestSideSetbacksAccumulateViolations(t *testing.T) {
	doc := compliantDoc()
	doc.Setbacks.Left = document.Float(3)
	doc.Setbacks.Right = nil

	res := resultByID(t, run(doc), "SETBACK_SIDE")
	assert.False(t, res.Passed)
	assert.Equal(t, []string{
		"Left side setback is 3ft (minimum 5ft)",
		"Right side setback not specified",
	}, res.Violations)
}

func TestSideSetbacksBothMissing(t *testing.T) {
	doc := compliantDoc()
	doc.Setbacks.Left = nil
	doc.Setbacks.Right = nil

	res := resultByID(t, run(doc), "SETBACK_SIDE")
	assert.False(t, res.Passed)
	assert.Equal(t, []string{
		"Left side setback not specified",
		"Right side setback not specified",
	}, res.Violations)
}

func TestRearSetback(t *testing.T) {
	doc := compliantDoc()
	doc.Setbacks.Rear = document.Float(8)
	res := resultByID(t, run(doc), "SETBACK_REAR")
	assert.False(t, res.Passed)
	assert.Equal(t, []string{"Rear setback is 8ft (minimum 10ft required)"}, res.Violations)

	doc.Setbacks.Rear = nil
	res = resultByID(t, run(doc), "SETBACK_REAR")
	assert.Equal(t, []string{"Rear setback not specified"}, res.Violations)
}

func TestLotCoverage(t *testing.T) {
	doc := compliantDoc()

	doc.Dimensions.LotCoverage = document.Float(0.50)
	assert.True(t, resultByID(t, run(doc), "LOT_COVERAGE").Passed)

	doc.Dimensions.LotCoverage = document.Float(0.6)
	res := resultByID(t, run(doc), "LOT_COVERAGE")
	assert.False(t, res.Passed)
	assert.Equal(t, []string{"Lot coverage is 60% (maximum 50%)"}, res.Violations)

	doc.Dimensions.LotCoverage = nil
	res = resultByID(t, run(doc), "LOT_COVERAGE")
	assert.Equal(t, []string{"Lot coverage percentage not specified"}, res.Violations)
}

func TestBuildingHeight(t *testing.T) {
	doc := compliantDoc()

	doc.Dimensions.Height = document.Float(35)
	assert.True(t, resultByID(t, run(doc), "BUILDING_HEIGHT").Passed)

	doc.Dimensions.Height = document.Float(40)
	res := resultByID(t, run(doc), "BUILDING_HEIGHT")
	assert.False(t, res.Passed)
	assert.Equal(t, []string{"Building height is 40ft (maximum 35ft)"}, res.Violations)

	doc.Dimensions.Height = nil
	res = resultByID(t, run(doc), "BUILDING_HEIGHT")
	assert.Equal(t, []string{"Building height not specified"}, res.Violations)
}

func TestBathroomMinSizePerRoom(t *testing.T) {
	doc := compliantDoc()
	doc.Rooms = []document.Room{
		{Name: "Bathroom 1", Area: 30}, // boundary passes
		{Name: "Bathroom 2", Area: 24},
		{Name: "Master Bathroom", Area: 28.5},
	}

	res := resultByID(t, run(doc), "BATHROOM_MIN_SIZE")
	assert.False(t, res.Passed)
	assert.Equal(t, []string{
		"Bathroom 2 is 24 sq ft (minimum 30 sq ft)",
		"Master Bathroom is 28.5 sq ft (minimum 30 sq ft)",
	}, res.Violations)
}

func TestEgressWindowAlwaysAdvisory(t *testing.T) {
	res := resultByID(t, run(&document.StructuredDocument{Rooms: []document.Room{}}), "EGRESS_WINDOW")
	assert.True(t, res.Passed)
	assert.Empty(t, res.Violations)
	require.Len(t, res.Notes, 1)
}
