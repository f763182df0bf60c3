package jobposting

import (
	"context"
	"fmt"

	"jobposting-workers/internal/common/logger"
	"jobposting-workers/internal/models"
)

// DivisionCache stores Division choices per library. Implementations report
// a miss with ok=false and a nil error.
type DivisionCache interface {
	Get(ctx context.Context, library string) (divisions []string, ok bool, err error)
	Set(ctx context.Context, library string, divisions []string) error
}

// TaxonomyLoader builds the department to division mapping.
type TaxonomyLoader struct {
	store  Store
	field  string
	cache  DivisionCache
	logger logger.Logger
}

// NewTaxonomyLoader reads choices of field. cache may be nil.
func NewTaxonomyLoader(store Store, field string, cache DivisionCache, log logger.Logger) *TaxonomyLoader {
	return &TaxonomyLoader{
		store:  store,
		field:  field,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "taxonomy-loader"}),
	}
}

// LoadDepartments reads the division choices of each library, in order.
// Libraries without the field are left out.
func (l *TaxonomyLoader) LoadDepartments(ctx context.Context, libraries []string) ([]models.Department, error) {
	departments := make([]models.Department, 0, len(libraries))

	for _, library := range libraries {
		divisions, found, err := l.divisions(ctx, library)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		departments = append(departments, models.Department{Name: library, Divisions: divisions})
	}

	return departments, nil
}

func (l *TaxonomyLoader) divisions(ctx context.Context, library string) ([]string, bool, error) {
	if l.cache != nil {
		cached, ok, err := l.cache.Get(ctx, library)
		if err != nil {
			l.logger.Warn("division cache read failed", map[string]interface{}{"library": library, "error": err.Error()})
		} else if ok {
			return cached, true, nil
		}
	}

	choices, err := l.store.FieldChoices(ctx, library, l.field)
	if err != nil {
		if isEnumerationGap(err) {
			l.logger.Debug("library has no division field", map[string]interface{}{"library": library, "field": l.field})
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s choices of %s: %w", l.field, library, err)
	}
	if choices == nil {
		choices = []string{}
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, library, choices); err != nil {
			l.logger.Warn("division cache write failed", map[string]interface{}{"library": library, "error": err.Error()})
		}
	}
	return choices, true, nil
}

// MergeDivisions flattens all divisions, keeping the first occurrence of
// each exact string. Comparison is case-sensitive and untrimmed.
func MergeDivisions(departments []models.Department) []string {
	seen := make(map[string]bool)
	merged := make([]string, 0)
	for _, d := range departments {
		for _, division := range d.Divisions {
			if seen[division] {
				continue
			}
			seen[division] = true
			merged = append(merged, division)
		}
	}
	return merged
}

// DivisionsFor returns the divisions of the named department.
func DivisionsFor(departments []models.Department, name string) ([]string, bool) {
	for _, d := range departments {
		if d.Name == name {
			return d.Divisions, true
		}
	}
	return nil, false
}
