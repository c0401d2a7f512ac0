package app

import "context"

// Reset restores the original application bundle.
func (s Service) Reset(ctx context.Context) (ResetResult, error) {
	machine, err := s.newMachine(nil)
	if err != nil {
		return ResetResult{}, err
	}
	state, err := machine.Reset(ctx)
	flow := machine.Context()
	return ResetResult{
		FlowID:        flow.FlowID,
		State:         state,
		ExitRequested: flow.ExitRequested,
	}, err
}
