package services

import (
	"errors"
	"testing"

	"review-trophy-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func always(int64) bool { return true }

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	kinds := r.Kinds()
	require.Len(t, kinds, 2)
	assert.Equal(t, "milestone", kinds[0].ID)
	assert.Equal(t, "palindrome", kinds[1].ID)

	k, err := r.Lookup("palindrome")
	require.NoError(t, err)
	assert.Equal(t, "Palindrome Trophy", k.Title)
	assert.Equal(t, "rb/images/fish-trophy.png", k.IconURL)
}

func TestRegistry_LookupUnknown(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Lookup("pailindrome")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTrophyKindNotFound))

	_, err = r.KindOf(models.Trophy{TrophyType: "retired"})
	assert.ErrorIs(t, err, ErrTrophyKindNotFound)
}

func TestRegistry_KindsIsACopy(t *testing.T) {
	r := DefaultRegistry()
	kinds := r.Kinds()
	kinds[0] = models.TrophyKind{ID: "mutated"}

	assert.Equal(t, "milestone", r.Kinds()[0].ID)
}

func TestRegistry_Qualifying(t *testing.T) {
	r := DefaultRegistry()

	got := r.Qualifying(1000)
	require.Len(t, got, 1)
	assert.Equal(t, "milestone", got[0].ID)

	got = r.Qualifying(1221)
	require.Len(t, got, 1)
	assert.Equal(t, "palindrome", got[0].ID)

	assert.Empty(t, r.Qualifying(1234))
	assert.Empty(t, r.Qualifying(0))
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name  string
		kinds []models.TrophyKind
	}{
		{"empty id", []models.TrophyKind{{Title: "Nameless", Qualifies: always}}},
		{"not a slug", []models.TrophyKind{{ID: "Big Number", Qualifies: always}}},
		{"no predicate", []models.TrophyKind{{ID: "lucky"}}},
		{"duplicate", []models.TrophyKind{MilestoneTrophy(), MilestoneTrophy()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.kinds...)
			assert.Error(t, err)
		})
	}

	r, err := NewRegistry(models.TrophyKind{ID: "lucky-seven", Qualifies: always})
	require.NoError(t, err)
	assert.Len(t, r.Kinds(), 1)
}
