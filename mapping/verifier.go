package mapping

import (
	"fmt"

	"go.uber.org/multierr"
)

// Verifier validates a fully populated entity before publication. A
// failing verification evicts the entity from the cache so a corrected
// subsequent attempt is not poisoned.
type Verifier interface {
	Verify(e *PersistentEntity) error
}

// defaultVerifier enforces the structural rules: at most one identifier
// property and an unambiguous persistence constructor.
type defaultVerifier struct{}

func (defaultVerifier) Verify(e *PersistentEntity) error {
	var err error

	if len(e.idCandidates) > 1 {
		names := make([]string, len(e.idCandidates))
		for i, p := range e.idCandidates {
			names[i] = p.Name()
		}
		err = multierr.Append(err, fmt.Errorf("conflicting identifier properties %v", names))
	}

	if e.ctorErr != nil {
		err = multierr.Append(err, e.ctorErr)
	}

	return err
}
