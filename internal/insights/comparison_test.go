package insights

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobscout/internal/generation"
	"github.com/jonathan/jobscout/internal/ingestion"
	"github.com/jonathan/jobscout/internal/llm/llmtest"
)

const comparisonJSON = `{
	"summary": "Both are backend-leaning roles.",
	"similarities": ["Go", "Remote"],
	"differences": ["Kubernetes focus", "Team size"],
	"recommendedListingId": "abc",
	"recommendationReason": "Broader scope"
}`

func TestCompare_InvalidSizeSkipsModel(t *testing.T) {
	f := newFixture(t, llmtest.JSON(comparisonJSON), nil)
	ctx := context.Background()

	for _, ids := range [][]string{
		nil,
		{"abc"},
		{"abc", "def", "ghi", "jkl"},
		{"abc", "abc"},
		{"abc", " "},
	} {
		_, err := f.svc.Compare(ctx, uuid.New(), CompareRequest{ListingIDs: ids})
		assert.ErrorIs(t, err, generation.ErrInvalidComparisonSize, "ids %v", ids)
	}
	assert.Equal(t, 0, f.fake.CallCount())
}

func TestCompare_GeneratesAndCaches(t *testing.T) {
	f := newFixture(t, llmtest.JSON(comparisonJSON), nil)
	ctx := context.Background()
	requester := uuid.New()

	first, err := f.svc.Compare(ctx, requester, CompareRequest{ListingIDs: []string{"abc", "def"}})
	require.NoError(t, err)
	assert.Equal(t, "abc", first.RecommendedListingID)
	assert.Equal(t, []string{"Go", "Remote"}, first.Similarities)

	prompt := f.fake.Calls()[0].Prompt
	assert.Less(t, strings.Index(prompt, "Build services in Go."), strings.Index(prompt, "Run Kubernetes."))

	reordered, err := f.svc.Compare(ctx, requester, CompareRequest{ListingIDs: []string{"def", "abc"}})
	require.NoError(t, err)
	assert.Equal(t, first.ID, reordered.ID)
	assert.Equal(t, 1, f.fake.CallCount())

	_, err = f.svc.Compare(ctx, requester, CompareRequest{ListingIDs: []string{"abc", "def", "ghi"}})
	require.NoError(t, err)
	assert.Equal(t, 2, f.fake.CallCount())
}

func TestCompare_DoesNotCollideWithSummary(t *testing.T) {
	f := newFixture(t, llmtest.JSON(comparisonJSON), nil)
	ctx := context.Background()
	requester := uuid.New()

	_, err := f.svc.Compare(ctx, requester, CompareRequest{ListingIDs: []string{"abc", "def"}})
	require.NoError(t, err)

	got, err := f.svc.ExistingSummary(ctx, requester, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCompare_DiscardsUnknownRecommendation(t *testing.T) {
	f := newFixture(t, llmtest.JSON(`{
		"summary": "Two roles.",
		"similarities": ["Go"],
		"differences": ["Scope"],
		"recommendedListingId": "not-an-input",
		"recommendationReason": "Made up"
	}`), nil)

	got, err := f.svc.Compare(context.Background(), uuid.New(), CompareRequest{ListingIDs: []string{"abc", "def"}})
	require.NoError(t, err)
	assert.Empty(t, got.RecommendedListingID)
	assert.Empty(t, got.RecommendationReason)
	assert.Equal(t, 1, f.fake.CallCount())
}

func TestCompare_ListingNotFound(t *testing.T) {
	f := newFixture(t, llmtest.JSON(comparisonJSON), nil)

	_, err := f.svc.Compare(context.Background(), uuid.New(), CompareRequest{ListingIDs: []string{"abc", "missing"}})
	assert.ErrorIs(t, err, ingestion.ErrListingNotFound)
	assert.Equal(t, 0, f.fake.CallCount())
}

func TestStreamCompare(t *testing.T) {
	f := newFixture(t, llmtest.New(llmtest.Response{
		Chunks: []string{`{"summary": "Both`, ` backend", "similarities": ["Go"], `, `"differences": ["Scope"]}`},
	}), nil)
	ctx := context.Background()
	requester := uuid.New()
	req := CompareRequest{ListingIDs: []string{"abc", "def"}}

	cached, pending, err := f.svc.StreamCompare(ctx, requester, req)
	require.NoError(t, err)
	assert.Nil(t, cached)

	count := 0
	for range pending.Partials() {
		count++
	}
	final, err := pending.Wait()
	require.NoError(t, err)
	assert.Positive(t, count)
	assert.Equal(t, "Both backend", final.Summary)

	pending.Save(ctx, final)
	hit, _, err := f.svc.StreamCompare(ctx, requester, req)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, pending.ID, hit.ID)
}

func TestCompareRequest_Validate(t *testing.T) {
	ok := CompareRequest{ListingIDs: []string{"a", "b"}}
	assert.NoError(t, ok.Validate())

	bad := CompareRequest{ListingIDs: []string{"a", strings.Repeat("x", 200)}}
	assert.Error(t, bad.Validate())
}
