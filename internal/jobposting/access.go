package jobposting

import (
	"context"
	"fmt"
	"strings"

	"jobposting-workers/internal/common/logger"
)

// AccessResolver filters the configured department libraries down to those
// the principal can add items to.
type AccessResolver struct {
	store           Store
	libraries       []string
	templateLibrary string
	logger          logger.Logger
}

func NewAccessResolver(store Store, libraries []string, templateLibrary string, log logger.Logger) *AccessResolver {
	return &AccessResolver{
		store:           store,
		libraries:       libraries,
		templateLibrary: templateLibrary,
		logger:          log.WithFields(map[string]interface{}{"component": "access-resolver"}),
	}
}

// ListAccessibleLibraries returns writable libraries in configured order.
// principal is a login name; empty means the calling identity. The template
// library is never returned. Libraries that are missing or hidden from the
// principal are skipped; any other failure aborts the enumeration.
func (r *AccessResolver) ListAccessibleLibraries(ctx context.Context, principal string) ([]string, error) {
	seen := make(map[string]bool, len(r.libraries))
	accessible := make([]string, 0, len(r.libraries))

	for _, library := range r.libraries {
		if seen[library] || strings.EqualFold(library, r.templateLibrary) {
			continue
		}
		seen[library] = true

		ok, err := r.store.CanAddItems(ctx, library, principal)
		if err != nil {
			if isEnumerationGap(err) {
				r.logger.Debug("skipping library", map[string]interface{}{"library": library, "reason": err.Error()})
				continue
			}
			return nil, fmt.Errorf("check permissions on %s: %w", library, err)
		}
		if ok {
			accessible = append(accessible, library)
		}
	}

	return accessible, nil
}
