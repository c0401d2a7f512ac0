package ports

import "livebundle/internal/types"

// ExitPolicyPort decides whether a finished flow step asks the host
// application to exit.
type ExitPolicyPort interface {
	ExitAfter(state types.FlowState, err error) bool
}
