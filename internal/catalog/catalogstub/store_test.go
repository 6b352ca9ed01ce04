package catalogstub

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/productreview/internal/domain"
	apperrors "github.com/utafrali/productreview/pkg/errors"
	"github.com/utafrali/productreview/pkg/pagination"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, n int) *Store {
	t.Helper()
	s := NewStore(WithClock(func() time.Time { return fixedNow }))
	for i := 0; i < n; i++ {
		category := domain.CategoryAudio
		if i%2 == 1 {
			category = domain.CategoryGaming
		}
		s.AddProduct(domain.Product{
			Name:     string(rune('A' + i)),
			Category: category,
			Price:    decimal.NewFromInt(int64(100 - i)),
		})
	}
	return s
}

func TestStore_ListProducts_Pages(t *testing.T) {
	s := newTestStore(t, 15)

	first, err := s.ListProducts(pagination.Params{Page: 0, Size: 10}, "", nil)
	require.NoError(t, err)
	assert.Len(t, first.Content, 10)
	assert.Equal(t, 15, first.TotalElements)
	assert.Equal(t, 2, first.TotalPages)
	assert.False(t, first.Last)

	second, err := s.ListProducts(pagination.Params{Page: 1, Size: 10}, "", nil)
	require.NoError(t, err)
	assert.Len(t, second.Content, 5)
	assert.True(t, second.Last)
	assert.True(t, second.Consistent())
}

func TestStore_ListProducts_SortAndCategory(t *testing.T) {
	s := newTestStore(t, 6)

	page, err := s.ListProducts(pagination.Params{Page: 0, Size: 10}, "price,asc", nil)
	require.NoError(t, err)
	require.Len(t, page.Content, 6)
	assert.Equal(t, "F", page.Content[0].Name)
	assert.Equal(t, "A", page.Content[5].Name)

	page, err = s.ListProducts(pagination.Params{Page: 0, Size: 10}, "name,desc", nil)
	require.NoError(t, err)
	assert.Equal(t, "F", page.Content[0].Name)

	gaming := "gaming"
	page, err = s.ListProducts(pagination.Params{Page: 0, Size: 10}, "", &gaming)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalElements)
	for _, p := range page.Content {
		assert.Equal(t, domain.CategoryGaming, p.Category)
	}
}

func TestStore_ListProducts_BadSort(t *testing.T) {
	s := newTestStore(t, 1)

	_, err := s.ListProducts(pagination.DefaultParams(), "color,asc", nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = s.ListProducts(pagination.DefaultParams(), "name,sideways", nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestStore_AddReview_RecomputesAggregates(t *testing.T) {
	s := newTestStore(t, 1)

	for _, rating := range []int{5, 4, 4} {
		_, err := s.AddReview(1, domain.Review{ReviewerName: "x", Rating: rating, Comment: "c"})
		require.NoError(t, err)
	}

	p, err := s.Product(1)
	require.NoError(t, err)
	assert.Equal(t, 3, p.ReviewCount)
	assert.Equal(t, 4.3, p.AverageRating)
	assert.Equal(t, map[int]int{5: 1, 4: 2}, p.RatingBreakdown)
}

func TestStore_AddReview_Defaults(t *testing.T) {
	s := newTestStore(t, 1)

	r, err := s.AddReview(1, domain.Review{Rating: 3, Comment: "ok", MarkedHelpful: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.ID)
	assert.Equal(t, domain.DefaultReviewerName, r.ReviewerName)
	assert.False(t, r.MarkedHelpful)
	require.NotNil(t, r.CreatedAt)
	assert.Equal(t, fixedNow, *r.CreatedAt)
}

func TestStore_AddReview_Errors(t *testing.T) {
	s := newTestStore(t, 1)

	_, err := s.AddReview(99, domain.Review{Rating: 3})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = s.AddReview(1, domain.Review{Rating: 6})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestStore_Reviews_NewestFirstAndRatingFilter(t *testing.T) {
	s := newTestStore(t, 1)
	for i, rating := range []int{5, 3, 5, 1} {
		at := fixedNow.Add(time.Duration(i) * time.Hour)
		_, err := s.AddReview(1, domain.Review{Rating: rating, Comment: "c", CreatedAt: &at})
		require.NoError(t, err)
	}

	page, err := s.Reviews(1, pagination.Params{Page: 0, Size: 10}, "", nil)
	require.NoError(t, err)
	require.Len(t, page.Content, 4)
	assert.Equal(t, int64(4), page.Content[0].ID)
	assert.Equal(t, int64(1), page.Content[3].ID)

	five := 5
	page, err = s.Reviews(1, pagination.Params{Page: 0, Size: 10}, "createdAt,desc", &five)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalElements)
	for _, r := range page.Content {
		assert.Equal(t, 5, r.Rating)
	}

	_, err = s.Reviews(42, pagination.DefaultParams(), "", nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_MarkHelpful(t *testing.T) {
	s := newTestStore(t, 1)
	r, err := s.AddReview(1, domain.Review{Rating: 4, Comment: "c", HelpfulCount: 2})
	require.NoError(t, err)

	updated, err := s.MarkHelpful(r.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.HelpfulCount)

	page, err := s.Reviews(1, pagination.DefaultParams(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Content[0].HelpfulCount)

	_, err = s.MarkHelpful(999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSeed_BuildsConsistentCatalog(t *testing.T) {
	s := NewSeededStore(fixedNow)
	require.Equal(t, len(seedCatalog), s.Len())

	for id := int64(1); id <= int64(s.Len()); id++ {
		p, err := s.Product(id)
		require.NoError(t, err)

		sum := 0
		for _, n := range p.RatingBreakdown {
			sum += n
		}
		assert.Equal(t, p.ReviewCount, sum, "product %d breakdown", id)
		assert.GreaterOrEqual(t, p.AverageRating, 0.0)
		assert.LessOrEqual(t, p.AverageRating, 5.0)
	}
}
