// Package mock provides the deterministic default implementations of the
// extraction and interpretation engines. They produce the same schemas the
// live engines would, so the rest of the pipeline runs and is testable
// without an OCR backend or an LLM.
package mock

import (
	"context"
	"log"

	"github.com/permitpro/permitpro/internal/domain/document"
	"github.com/permitpro/permitpro/internal/domain/uploads"
)

type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

// Extract returns a fixed, realistic floor-plan extraction simulating what
// OCR would produce.
func (e *Extractor) Extract(ctx context.Context, upload *uploads.Upload) (*document.StructuredDocument, error) {
	log.Printf("extraction engine processing upload %s [mode=mock]", upload.ID)

	doc := &document.StructuredDocument{
		DocumentType: document.TypeFloorPlan,
		PageCount:    3,
		ExtractedText: []string{
			"FIRST FLOOR PLAN",
			`Scale: 1/4" = 1'`,
			"Master Bedroom: 14' x 16'",
			"Kitchen: 12' x 14'",
			"Living Room: 18' x 20'",
			"Bathroom 1: 8' x 10'",
			"Bathroom 2: 6' x 8'",
			"Garage: 20' x 22'",
			"Front Setback: 20'",
			"Side Setback: 5'",
			"Rear Setback: 15'",
			"Lot Coverage: 42%",
			"Building Height: 28'",
		},
		Rooms: []document.Room{
			{Name: "Master Bedroom", Width: 14, Length: 16, Area: 224},
			{Name: "Kitchen", Width: 12, Length: 14, Area: 168},
			{Name: "Living Room", Width: 18, Length: 20, Area: 360},
			{Name: "Bathroom 1", Width: 8, Length: 10, Area: 80},
			{Name: "Bathroom 2", Width: 6, Length: 8, Area: 48},
			{Name: "Garage", Width: 20, Length: 22, Area: 440},
		},
		Dimensions: document.Dimensions{
			TotalArea:   document.Float(2400),
			Stories:     document.Int(2),
			Height:      document.Float(28),
			LotCoverage: document.Float(0.42),
		},
		Setbacks: document.Setbacks{
			Front: document.Float(20),
			Left:  document.Float(5),
			Right: document.Float(5),
			Rear:  document.Float(15),
		},
		Metadata: document.Metadata{
			Scale:             `1/4" = 1'`,
			HasElevations:     true,
			HasSitePlan:       false,
			HasFoundationPlan: false,
			HasElectricalPlan: false,
			HasMechanicalPlan: false,
		},
		Confidence: 0.85,
	}
	doc.Normalize()
	return doc, nil
}
