package mock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permitpro/permitpro/internal/domain/uploads"
	"github.com/permitpro/permitpro/internal/infra/ai/mock"
)

func TestMockExtractReturnsWellFormedDocument(t *testing.T) {
	doc, err := mock.NewExtractor().Extract(context.Background(), &uploads.Upload{ID: "up-1", TenantID: "t1"})
	require.NoError(t, err)

	assert.NotNil(t, doc.Rooms)
	assert.NotEmpty(t, doc.Rooms)
	assert.Greater(t, doc.PageCount, 0)
	assert.GreaterOrEqual(t, doc.Confidence, 0.0)
	assert.LessOrEqual(t, doc.Confidence, 1.0)

	for _, room := range doc.Rooms {
		assert.Greater(t, room.Width, 0.0, room.Name)
		assert.Greater(t, room.Length, 0.0, room.Name)
		assert.InDelta(t, room.Width*room.Length, room.Area, 1e-9, room.Name)
	}

	// setbacks and dimensions are present on the fixture
	require.NotNil(t, doc.Setbacks.Front)
	assert.Equal(t, 20.0, *doc.Setbacks.Front)
	require.NotNil(t, doc.Dimensions.LotCoverage)
	assert.Equal(t, 0.42, *doc.Dimensions.LotCoverage)
}

func TestMockExtractIsDeterministic(t *testing.T) {
	ex := mock.NewExtractor()
	up := &uploads.Upload{ID: "up-1", TenantID: "t1"}

	a, err := ex.Extract(context.Background(), up)
	require.NoError(t, err)
	b, err := ex.Extract(context.Background(), up)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
