package ai

import (
	"context"

	"github.com/permitpro/permitpro/internal/domain/analysis"
	"github.com/permitpro/permitpro/internal/domain/document"
	"github.com/permitpro/permitpro/internal/domain/rules"
	"github.com/permitpro/permitpro/internal/domain/uploads"
)

// Extractor port: turns an uploaded plan file into structured document data.
// The implementation is selected at construction time: deterministic mock
// by default, network-backed OCR when configured.
type Extractor interface {
	Extract(ctx context.Context, upload *uploads.Upload) (*document.StructuredDocument, error)
}

// Interpreter port: aggregates rule results into the scored report.
type Interpreter interface {
	Interpret(ctx context.Context, doc *document.StructuredDocument, results []rules.Result) (*analysis.Interpretation, error)
}
