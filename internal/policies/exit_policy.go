package policies

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"livebundle/internal/types"
)

// ExitPolicy decides when a flow asks the host application to exit after
// an install, live session launch or reset attempt.
//
// ExitPolicyOnSuccess exits only when the step succeeded. ExitPolicyAlways
// exits after every attempt, failures included, which leaves the user on
// the reloaded original bundle instead of an error screen.
type ExitPolicy struct {
	Mode types.ExitPolicyMode
}

func NewExitPolicy(mode types.ExitPolicyMode) ExitPolicy {
	if mode == "" {
		mode = types.ExitPolicyOnSuccess
	}
	return ExitPolicy{Mode: mode}
}

// ParseExitPolicyMode reads a configured mode. Empty selects on-success.
func ParseExitPolicyMode(value string) (types.ExitPolicyMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(types.ExitPolicyOnSuccess):
		return types.ExitPolicyOnSuccess, nil
	case string(types.ExitPolicyAlways):
		return types.ExitPolicyAlways, nil
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unknown exit policy: %s", value))
}

func (p ExitPolicy) ExitAfter(step types.FlowState, err error) bool {
	switch step {
	case types.FlowStateInstalled, types.FlowStateSessionLaunched, types.FlowStateReset:
	default:
		return false
	}
	if err == nil {
		return true
	}
	return p.Mode == types.ExitPolicyAlways
}
