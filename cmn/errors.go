package cmn

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel error kinds, constructed the way the teacher builds
// cmn.NewErrAborted / cmn.NewErrXactUsePrev: a typed constructor per kind
// rather than ad hoc fmt.Errorf at every call site.

type ErrInfeasible struct {
	BlockID string
	Reason  string
}

func NewErrInfeasible(blockID, reason string) *ErrInfeasible {
	return &ErrInfeasible{BlockID: blockID, Reason: reason}
}

func (e *ErrInfeasible) Error() string {
	return fmt.Sprintf("block %s: infeasible placement (%s)", e.BlockID, e.Reason)
}

type ErrTimeout struct {
	Stage string
}

func NewErrTimeout(stage string) *ErrTimeout { return &ErrTimeout{Stage: stage} }

func (e *ErrTimeout) Error() string { return fmt.Sprintf("%s: wall-clock budget exceeded", e.Stage) }

type ErrRollback struct {
	VoyageID string
}

func NewErrRollback(voyageID string) *ErrRollback { return &ErrRollback{VoyageID: voyageID} }

func (e *ErrRollback) Error() string {
	return fmt.Sprintf("voyage %s rolled back: zero blocks placed", e.VoyageID)
}

type ErrConfig struct {
	Detail string
}

func NewErrConfig(detail string) *ErrConfig { return &ErrConfig{Detail: detail} }

func (e *ErrConfig) Error() string { return fmt.Sprintf("configuration error: %s", e.Detail) }

// Wrap and Cause re-export github.com/pkg/errors so callers outside cmn don't
// need a second import for the common wrap/unwrap idiom.
var (
	Wrap  = errors.Wrap
	Wrapf = errors.Wrapf
	Cause = errors.Cause
)
