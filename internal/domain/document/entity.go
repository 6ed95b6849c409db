package document

// DocumentType enum
type DocumentType string

const (
	TypeFloorPlan      DocumentType = "floor_plan"
	TypeSitePlan       DocumentType = "site_plan"
	TypeElevation      DocumentType = "elevation"
	TypeFoundationPlan DocumentType = "foundation_plan"
)

// Room as extracted from a plan sheet. Area is trusted as supplied by the
// extractor; callers must not recompute it from width x length.
type Room struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
	Area   float64 `json:"area"`
}

// Dimensions value object. Pointer fields distinguish "not found on the
// plans" from a literal zero.
type Dimensions struct {
	TotalArea   *float64 `json:"totalArea,omitempty"`
	Stories     *int     `json:"stories,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	LotCoverage *float64 `json:"lotCoverage,omitempty"`
}

// Setbacks value object, distances in feet. Absent means the sheet did not
// state the setback, which several zoning rules treat as a violation.
type Setbacks struct {
	Front *float64 `json:"front,omitempty"`
	Left  *float64 `json:"left,omitempty"`
	Right *float64 `json:"right,omitempty"`
	Rear  *float64 `json:"rear,omitempty"`
}

// Metadata flags describing which plan sheets were detected in the set.
type Metadata struct {
	Scale             string `json:"scale,omitempty"`
	HasElevations     bool   `json:"hasElevations"`
	HasSitePlan       bool   `json:"hasSitePlan"`
	HasFoundationPlan bool   `json:"hasFoundationPlan"`
	HasElectricalPlan bool   `json:"hasElectricalPlan"`
	HasMechanicalPlan bool   `json:"hasMechanicalPlan"`
}

// StructuredDocument is the extraction stage output consumed by the rule
// engine and the interpreter. Rooms is never nil.
type StructuredDocument struct {
	DocumentType  DocumentType `json:"documentType"`
	PageCount     int          `json:"pageCount"`
	ExtractedText []string     `json:"extractedText"`
	Rooms         []Room       `json:"rooms"`
	Dimensions    Dimensions   `json:"dimensions"`
	Setbacks      Setbacks     `json:"setbacks"`
	Metadata      Metadata     `json:"metadata"`
	Confidence    float64      `json:"confidence"`
}

// Normalize enforces the non-nil rooms invariant after decoding from
// external sources (live extractors, stored JSON).
func (d *StructuredDocument) Normalize() {
	if d.Rooms == nil {
		d.Rooms = []Room{}
	}
}

// Float returns a pointer to v, for building optional fields in literals.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
