package analyses

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/permitpro/permitpro/internal/application"
	"github.com/permitpro/permitpro/internal/domain/ai"
	"github.com/permitpro/permitpro/internal/domain/analysis"
	"github.com/permitpro/permitpro/internal/domain/rules"
	"github.com/permitpro/permitpro/internal/domain/uploads"
)

// ErrAnalysisInFlight is returned when an analysis is already running for
// the same upload. A new run may be triggered once the first reaches a
// terminal state.
var ErrAnalysisInFlight = errors.New("analysis already in flight for upload")

// Service orchestrates the full analysis pipeline:
//  1. create the analysis record (processing)
//  2. extraction
//  3. rule engine
//  4. interpretation
//  5. persist the completed report
//
// Stages run strictly in sequence; any stage error marks the record failed
// with the error message and is re-surfaced to the caller. Service is safe
// for concurrent use.
type Service struct {
	Analyses    analysis.Repository
	Uploads     uploads.Repository
	Extractor   ai.Extractor
	Interpreter ai.Interpreter
	Catalog     []rules.Rule
	Clock       application.Clock
	Mode        string

	mu       sync.Mutex
	inflight map[uploads.UploadID]struct{}
}

func NewService(analyses analysis.Repository, ups uploads.Repository, extractor ai.Extractor, interpreter ai.Interpreter, catalog []rules.Rule, clock application.Clock, mode string) *Service {
	return &Service{
		Analyses:    analyses,
		Uploads:     ups,
		Extractor:   extractor,
		Interpreter: interpreter,
		Catalog:     catalog,
		Clock:       clock,
		Mode:        mode,
		inflight:    make(map[uploads.UploadID]struct{}),
	}
}

// StartAnalysis takes the per-upload guard and runs the pipeline in the
// background with context.Background(), so the run outlives the request
// that triggered it. A duplicate trigger fails fast with
// ErrAnalysisInFlight instead of queuing a second run.
func (s *Service) StartAnalysis(upload *uploads.Upload, userID string, done func(analysis.AnalysisID, error)) error {
	if err := s.acquire(upload.ID); err != nil {
		return err
	}
	go func() {
		defer s.release(upload.ID)
		id, err := s.run(context.Background(), upload, userID)
		if done != nil {
			done(id, err)
		}
	}()
	return nil
}

// RunAnalysis executes the pipeline for one upload and returns the analysis
// ID. At most one analysis runs per upload at a time; concurrent triggers
// get ErrAnalysisInFlight.
func (s *Service) RunAnalysis(ctx context.Context, upload *uploads.Upload, userID string) (analysis.AnalysisID, error) {
	if err := s.acquire(upload.ID); err != nil {
		return "", err
	}
	defer s.release(upload.ID)
	return s.run(ctx, upload, userID)
}

func (s *Service) run(ctx context.Context, upload *uploads.Upload, userID string) (analysis.AnalysisID, error) {
	start := s.Clock.Now()
	id := analysis.AnalysisID(uuid.New().String())

	rec := &analysis.Record{
		ID:              id,
		TenantID:        upload.TenantID,
		UploadID:        string(upload.ID),
		ProjectID:       upload.ProjectID,
		UserID:          userID,
		Status:          analysis.StatusProcessing,
		AIServiceMode:   s.Mode,
		PipelineVersion: analysis.PipelineVersion,
		CreatedAt:       start,
	}
	if err := s.Analyses.Save(ctx, rec); err != nil {
		return id, err
	}
	if err := s.Uploads.UpdateStatus(ctx, upload.TenantID, upload.ID, uploads.StatusProcessing); err != nil {
		return id, s.markFailed(rec, upload, err)
	}

	log.Printf("analysis %s step 1: extraction", id)
	doc, err := s.Extractor.Extract(ctx, upload)
	if err != nil {
		return id, s.markFailed(rec, upload, err)
	}

	log.Printf("analysis %s step 2: rule engine", id)
	results := rules.Run(s.Catalog, doc)

	log.Printf("analysis %s step 3: interpretation", id)
	interp, err := s.Interpreter.Interpret(ctx, doc, results)
	if err != nil {
		return id, s.markFailed(rec, upload, err)
	}

	done := s.Clock.Now()
	completedAt := done

	rec.Score = &interp.Score
	rec.RiskLevel = interp.RiskLevel
	rec.ComplianceFlags = analysis.FlagsFromResults(results)
	rec.MissingInformation = interp.MissingInformation
	rec.RejectionRisks = interp.RejectionRisks
	rec.Recommendations = interp.Recommendations
	rec.ExtractedData = doc
	rec.RuleResults = results
	rec.LLMInterpretation = interp.Interpretation
	rec.ProcessingTimeMS = done.Sub(start).Milliseconds()
	rec.Status = analysis.StatusCompleted
	rec.CompletedAt = &completedAt

	if err := s.Analyses.Save(ctx, rec); err != nil {
		return id, err
	}
	if err := s.Uploads.UpdateStatus(ctx, upload.TenantID, upload.ID, uploads.StatusAnalyzed); err != nil {
		return id, err
	}

	log.Printf("analysis %s completed in %dms — score: %.1f", id, rec.ProcessingTimeMS, interp.Score)
	return id, nil
}

// markFailed records the terminal failure and mirrors it to the upload. A
// background context is used so a cancelled request cannot lose the failure
// record. The original stage error is always returned.
func (s *Service) markFailed(rec *analysis.Record, upload *uploads.Upload, cause error) error {
	log.Printf("analysis %s failed: %v", rec.ID, cause)

	rec.Status = analysis.StatusFailed
	rec.ErrorMessage = cause.Error()
	if err := s.Analyses.Save(context.Background(), rec); err != nil {
		return fmt.Errorf("recording analysis failure: %v (original error: %w)", err, cause)
	}
	_ = s.Uploads.UpdateStatus(context.Background(), upload.TenantID, upload.ID, uploads.StatusFailed)
	return cause
}

func (s *Service) acquire(id uploads.UploadID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return ErrAnalysisInFlight
	}
	s.inflight[id] = struct{}{}
	return nil
}

func (s *Service) release(id uploads.UploadID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

// Get fetches one analysis by ID.
func (s *Service) Get(ctx context.Context, tenant string, id analysis.AnalysisID) (*analysis.Record, error) {
	return s.Analyses.Get(ctx, tenant, id)
}

// Latest fetches the N most recent analyses for a tenant.
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*analysis.Record, error) {
	return s.Analyses.Latest(ctx, tenant, limit)
}

// LatestByUpload fetches the most recent analysis for an upload.
func (s *Service) LatestByUpload(ctx context.Context, tenant string, uploadID string) (*analysis.Record, error) {
	return s.Analyses.LatestByUpload(ctx, tenant, uploadID)
}
