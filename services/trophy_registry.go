package services

import (
	"fmt"

	"review-trophy-service/models"

	"github.com/gosimple/slug"
)

// Registry is the fixed, ordered set of trophy kinds known to the service.
// It is immutable once built.
type Registry struct {
	kinds []models.TrophyKind
	byID  map[string]models.TrophyKind
}

func NewRegistry(kinds ...models.TrophyKind) (*Registry, error) {
	r := &Registry{
		kinds: make([]models.TrophyKind, 0, len(kinds)),
		byID:  make(map[string]models.TrophyKind, len(kinds)),
	}
	for _, k := range kinds {
		if k.ID == "" {
			return nil, fmt.Errorf("trophy kind %q: empty id", k.Title)
		}
		if !slug.IsSlug(k.ID) {
			return nil, fmt.Errorf("trophy kind %q: id must be a slug", k.ID)
		}
		if k.Qualifies == nil {
			return nil, fmt.Errorf("trophy kind %q: missing qualification predicate", k.ID)
		}
		if _, dup := r.byID[k.ID]; dup {
			return nil, fmt.Errorf("trophy kind %q: registered twice", k.ID)
		}
		r.kinds = append(r.kinds, k)
		r.byID[k.ID] = k
	}
	return r, nil
}

// DefaultRegistry holds the neat number trophies, milestone first.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(MilestoneTrophy(), PalindromeTrophy())
	if err != nil {
		panic(err)
	}
	return r
}

// Kinds returns the registered kinds in registration order.
func (r *Registry) Kinds() []models.TrophyKind {
	out := make([]models.TrophyKind, len(r.kinds))
	copy(out, r.kinds)
	return out
}

func (r *Registry) Lookup(id string) (models.TrophyKind, error) {
	k, ok := r.byID[id]
	if !ok {
		return models.TrophyKind{}, fmt.Errorf("%w: %q", ErrTrophyKindNotFound, id)
	}
	return k, nil
}

// KindOf resolves the kind a stored trophy was awarded for.
func (r *Registry) KindOf(t models.Trophy) (models.TrophyKind, error) {
	return r.Lookup(t.TrophyType)
}

// Qualifying returns every kind the review request id earns, in registration order.
func (r *Registry) Qualifying(reviewRequestID int64) []models.TrophyKind {
	var out []models.TrophyKind
	for _, k := range r.kinds {
		if k.IsQualified(reviewRequestID) {
			out = append(out, k)
		}
	}
	return out
}
