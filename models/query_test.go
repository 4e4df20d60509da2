package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://www.carsome.my/buy-car"

func intPtr(n int) *int { return &n }

func TestNormalizeQueryDeterministic(t *testing.T) {
	variants := []struct {
		brand, model string
	}{
		{"Honda", "Civic"},
		{"  honda  ", "civic"},
		{"HONDA", "  CIVIC"},
	}

	var first string
	for _, v := range variants {
		q, err := NormalizeQuery(v.brand, v.model, intPtr(50000))
		require.NoError(t, err)

		u := q.CanonicalURL(baseURL)
		if first == "" {
			first = u
			continue
		}
		assert.Equal(t, first, u, "equivalent inputs %q %q must share a canonical URL", v.brand, v.model)
	}
}

func TestNormalizeQueryInvalid(t *testing.T) {
	tests := []struct {
		name         string
		brand, model string
		mileage      *int
	}{
		{"empty brand", "", "civic", nil},
		{"whitespace brand", "   ", "civic", nil},
		{"empty model", "honda", "", nil},
		{"negative mileage", "honda", "civic", intPtr(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeQuery(tt.brand, tt.model, tt.mileage)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestCanonicalURL(t *testing.T) {
	q, err := NormalizeQuery("Perodua", "Myvi", intPtr(50000))
	require.NoError(t, err)
	assert.Equal(t, "https://www.carsome.my/buy-car/perodua/myvi?mileage=0,50000", q.CanonicalURL(baseURL))

	noCap, err := NormalizeQuery("Perodua", "Myvi", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://www.carsome.my/buy-car/perodua/myvi", noCap.CanonicalURL(baseURL))
}

func TestPageURL(t *testing.T) {
	withQuery := "https://www.carsome.my/buy-car/honda/civic?mileage=0,50000"
	assert.Equal(t, withQuery+"&pageNo=2", PageURL(withQuery, 2))

	bare := "https://www.carsome.my/buy-car/honda/civic"
	assert.Equal(t, bare+"?pageNo=1", PageURL(bare, 1))
}
