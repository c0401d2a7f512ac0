package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"livebundle/internal/core"
	"livebundle/internal/types"
)

// Resolve runs one flow from a package or session id to a terminal state.
// When the package offers several flavors the preset flavor is used, then
// the chooser. Without either the result stays in flavor selection and the
// error is types.ErrFlavorRequired.
func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	input := types.Input{
		PackageID: strings.TrimSpace(req.PackageID),
		SessionID: strings.TrimSpace(req.SessionID),
		BundleID:  strings.TrimSpace(req.BundleID),
	}
	if input.Empty() {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package id or session id is required")
	}
	if input.BundleID != "" && input.PackageID == "" {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("bundle id requires a package id")
	}
	if err := validateFlavor(req.Flavor); err != nil {
		return ResolveResult{}, err
	}

	machine, err := s.newMachine(req.OnTransition)
	if err != nil {
		return ResolveResult{}, err
	}
	state, err := machine.Submit(ctx, input)
	if state == types.FlowStateFlavorSelection {
		state, err = s.chooseFlavor(ctx, machine, req)
	}
	return resolveResult(machine, state), err
}

func (s Service) chooseFlavor(ctx context.Context, machine *core.ResolutionMachine, req ResolveRequest) (types.FlowState, error) {
	flavor := req.Flavor
	if flavor == types.FlavorNone && req.ChooseFlavor != nil {
		chosen, err := req.ChooseFlavor(ctx, machine.Context().Candidates)
		if err != nil {
			return machine.State(), err
		}
		flavor = chosen
	}
	if flavor == types.FlavorNone {
		return machine.State(), fmt.Errorf("%w: choose one of %s", types.ErrFlavorRequired, flavorList(machine.Context().Candidates))
	}
	log.Ctx(ctx).Debug().Str("flavor", string(flavor)).Msg("flavor selected")
	return machine.ChooseFlavor(ctx, flavor)
}

// OpenURL handles a deep link. Links that are not recognized are ignored.
func (s Service) OpenURL(ctx context.Context, req OpenURLRequest) (OpenURLResult, error) {
	intent := s.Router.Parse(req.URL)
	result := OpenURLResult{Intent: intent}
	switch intent.Kind {
	case types.IntentNone:
		log.Ctx(ctx).Info().Str("url", req.URL).Msg("deep link ignored")
		return result, nil
	case types.IntentOpenMenu:
		machine, err := s.newMachine(req.OnTransition)
		if err != nil {
			return result, err
		}
		if err := machine.Open(); err != nil {
			return result, err
		}
		status, err := s.Status(ctx)
		if err != nil {
			return result, err
		}
		result.Status = &status
		return result, nil
	}
	input := core.IntentInput(intent)
	resolved, err := s.Resolve(ctx, ResolveRequest{
		PackageID:    input.PackageID,
		SessionID:    input.SessionID,
		Flavor:       req.Flavor,
		ChooseFlavor: req.ChooseFlavor,
		OnTransition: req.OnTransition,
	})
	result.Resolve = &resolved
	return result, err
}

// Scan handles a scanned QR code payload.
func (s Service) Scan(ctx context.Context, req ScanRequest) (ResolveResult, error) {
	input := core.ParseScanPayload(req.Payload)
	if input.Empty() {
		return ResolveResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("scan payload is empty")
	}
	return s.Resolve(ctx, ResolveRequest{
		PackageID:    input.PackageID,
		SessionID:    input.SessionID,
		Flavor:       req.Flavor,
		ChooseFlavor: req.ChooseFlavor,
		OnTransition: req.OnTransition,
	})
}

func resolveResult(machine *core.ResolutionMachine, state types.FlowState) ResolveResult {
	flow := machine.Context()
	return ResolveResult{
		FlowID:        flow.FlowID,
		State:         state,
		PackageID:     flow.PackageID,
		SessionID:     flow.SessionID,
		BundleID:      flow.BundleID,
		Candidates:    flow.Candidates,
		ExitRequested: flow.ExitRequested,
	}
}

func validateFlavor(flavor types.Flavor) error {
	switch flavor {
	case types.FlavorNone, types.FlavorDev, types.FlavorProd:
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unknown bundle flavor: %s", flavor))
}

func flavorList(candidates []types.BundleDescriptor) string {
	flavors := core.Flavors(candidates)
	names := make([]string, 0, len(flavors))
	for _, flavor := range flavors {
		names = append(names, string(flavor))
	}
	return strings.Join(names, ", ")
}
