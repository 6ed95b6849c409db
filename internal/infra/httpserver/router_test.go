package httpserver_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permitpro/permitpro/internal/application"
	"github.com/permitpro/permitpro/internal/application/analyses"
	"github.com/permitpro/permitpro/internal/domain/analysis"
	"github.com/permitpro/permitpro/internal/domain/document"
	"github.com/permitpro/permitpro/internal/domain/rules"
	"github.com/permitpro/permitpro/internal/domain/uploads"
	aimock "github.com/permitpro/permitpro/internal/infra/ai/mock"
	"github.com/permitpro/permitpro/internal/infra/httpserver"
)

type memAnalyses struct {
	mu   sync.Mutex
	recs []analysis.Record
}

func (m *memAnalyses) Save(_ context.Context, rec *analysis.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, *rec)
	return nil
}

func (m *memAnalyses) Get(_ context.Context, _ string, id analysis.AnalysisID) (*analysis.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.recs) - 1; i >= 0; i-- {
		if m.recs[i].ID == id {
			rec := m.recs[i]
			return &rec, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memAnalyses) Latest(_ context.Context, _ string, _ int) ([]*analysis.Record, error) {
	return nil, nil
}

func (m *memAnalyses) LatestByUpload(_ context.Context, _ string, uploadID string) (*analysis.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.recs) - 1; i >= 0; i-- {
		if m.recs[i].UploadID == uploadID {
			rec := m.recs[i]
			return &rec, nil
		}
	}
	return nil, nil
}

type memUploads struct {
	mu     sync.Mutex
	upload uploads.Upload
}

func (m *memUploads) Get(_ context.Context, tenant string, id uploads.UploadID) (*uploads.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upload.TenantID != tenant || m.upload.ID != id {
		return nil, sql.ErrNoRows
	}
	u := m.upload
	return &u, nil
}

func (m *memUploads) UpdateStatus(_ context.Context, _ string, _ uploads.UploadID, status uploads.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upload.Status = status
	return nil
}

func (m *memUploads) status() uploads.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upload.Status
}

type extractorFunc func(ctx context.Context, up *uploads.Upload) (*document.StructuredDocument, error)

func (f extractorFunc) Extract(ctx context.Context, up *uploads.Upload) (*document.StructuredDocument, error) {
	return f(ctx, up)
}

func TestTriggerAnalysisConflictsWhileRunning(t *testing.T) {
	ups := &memUploads{upload: uploads.Upload{
		ID:         "up-1",
		TenantID:   "t1",
		StorageKey: "t1/plans/up-1.pdf",
		Status:     uploads.StatusUploaded,
	}}

	entered := make(chan struct{})
	release := make(chan struct{})
	var enteredOnce sync.Once
	svc := analyses.NewService(&memAnalyses{}, ups,
		extractorFunc(func(ctx context.Context, up *uploads.Upload) (*document.StructuredDocument, error) {
			enteredOnce.Do(func() { close(entered) })
			<-release
			return aimock.NewExtractor().Extract(ctx, up)
		}),
		aimock.NewInterpreter(), rules.Residential(), application.SystemClock{}, "mock")

	srv := httptest.NewServer(httpserver.NewRouter(svc, ups))
	defer srv.Close()

	trigger := func() *http.Response {
		resp, err := http.Post(srv.URL+"/v1/t1/uploads/up-1/analyze", "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	first := trigger()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	// the pipeline is still inside extraction: a duplicate trigger must
	// surface the conflict instead of queuing silently
	<-entered
	second := trigger()
	assert.Equal(t, http.StatusConflict, second.StatusCode)

	close(release)
	require.Eventually(t, func() bool {
		return ups.status() == uploads.StatusAnalyzed
	}, 2*time.Second, 10*time.Millisecond)

	// terminal state releases the guard: a retry is accepted again
	retry := trigger()
	assert.Equal(t, http.StatusOK, retry.StatusCode)
	require.Eventually(t, func() bool {
		return ups.status() == uploads.StatusAnalyzed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTriggerAnalysisUnknownUpload(t *testing.T) {
	ups := &memUploads{upload: uploads.Upload{ID: "up-1", TenantID: "t1"}}
	svc := analyses.NewService(&memAnalyses{}, ups,
		aimock.NewExtractor(), aimock.NewInterpreter(),
		rules.Residential(), application.SystemClock{}, "mock")

	srv := httptest.NewServer(httpserver.NewRouter(svc, ups))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/t1/uploads/nope/analyze", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
