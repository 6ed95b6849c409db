package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/sashabaranov/go-openai"

	"github.com/permitpro/permitpro/internal/domain/ai"
	"github.com/permitpro/permitpro/internal/domain/document"
	"github.com/permitpro/permitpro/internal/domain/uploads"
	"github.com/permitpro/permitpro/internal/infra/ai/prompt"
)

// PlanStore exposes the plan file to the extraction backend: Stat checks
// the object is actually readable, PresignedGet resolves the storage key to
// a fetchable URL. The MinIO store implements it.
type PlanStore interface {
	Stat(ctx context.Context, key string) (int64, error)
	PresignedGet(ctx context.Context, key string) (string, error)
}

type Extractor struct {
	client *openai.Client
	model  string
	store  PlanStore
}

func NewExtractor(apiKey, model string, store PlanStore) *Extractor {
	ex := &Extractor{model: model, store: store}
	if apiKey != "" {
		ex.client = openai.NewClient(apiKey)
	}
	return ex
}

func (ex *Extractor) Extract(ctx context.Context, upload *uploads.Upload) (*document.StructuredDocument, error) {
	if ex.client == nil || ex.store == nil {
		return nil, fmt.Errorf("live extraction: %w", ai.ErrNotConfigured)
	}
	log.Printf("extraction engine processing upload %s [mode=live]", upload.ID)

	// Presigning succeeds even for keys that don't exist, so verify the
	// object is readable before paying for a model call.
	if _, err := ex.store.Stat(ctx, upload.StorageKey); err != nil {
		return nil, &ai.ExtractionError{UploadID: string(upload.ID), Err: fmt.Errorf("plan file unreadable: %w", err)}
	}

	fileURL, err := ex.store.PresignedGet(ctx, upload.StorageKey)
	if err != nil {
		return nil, &ai.ExtractionError{UploadID: string(upload.ID), Err: err}
	}

	content, err := complete(ctx, ex.client, ex.model, prompt.ExtractSystemPrompt(), prompt.ExtractUserPrompt(fileURL))
	if err != nil {
		return nil, &ai.ExtractionError{UploadID: string(upload.ID), Err: wrapProviderErr(err)}
	}

	var doc document.StructuredDocument
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, &ai.ExtractionError{UploadID: string(upload.ID), Err: fmt.Errorf("invalid engine response: %w", err)}
	}
	doc.Normalize()
	return &doc, nil
}
