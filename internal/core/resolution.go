package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"livebundle/internal/policies"
	"livebundle/internal/ports"
	"livebundle/internal/types"
)

const (
	defaultMetadataTimeout = 30 * time.Second
	defaultDownloadTimeout = 5 * time.Minute
	defaultInstallTimeout  = time.Minute
)

const (
	flowKindPackage = "package"
	flowKindSession = "session"
	flowKindReset   = "reset"
)

var (
	errSuperseded         = errors.New("flow superseded by reset")
	errSessionWithoutHost = errors.New("session metadata has no host")
)

type PhaseTimeouts struct {
	Metadata time.Duration
	Download time.Duration
	Install  time.Duration
}

func DefaultPhaseTimeouts() PhaseTimeouts {
	return PhaseTimeouts{
		Metadata: defaultMetadataTimeout,
		Download: defaultDownloadTimeout,
		Install:  defaultInstallTimeout,
	}
}

type MachineDeps struct {
	Metadata   ports.MetadataPort
	Installer  ports.InstallerPort
	Assets     ports.AssetSourcePort
	Lifecycle  ports.LifecyclePort
	ExitPolicy ports.ExitPolicyPort
	Metrics    ports.FlowMetricsPort
	Platform   types.Platform
	Timeouts   PhaseTimeouts
}

// ResolutionMachine drives one user flow from an input descriptor to a
// terminal state: an installed bundle, a launched live session, a reset
// application or a failure. It is safe for concurrent use; operations that
// overlap an in-flight phase are rejected with types.ErrFlowInFlight.
type ResolutionMachine struct {
	deps   MachineDeps
	logger zerolog.Logger

	mu        sync.Mutex
	state     types.FlowState
	flow      types.ResolutionContext
	kind      string
	inFlight  bool
	resetting bool
	gen       uint64
	cancel    context.CancelFunc
	pending   []types.Transition
	observers []func(types.Transition)
}

func NewResolutionMachine(deps MachineDeps) (*ResolutionMachine, error) {
	if deps.Metadata == nil || deps.Installer == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolution machine requires metadata and installer ports")
	}
	if deps.Platform == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolution machine requires a platform")
	}
	if deps.ExitPolicy == nil {
		deps.ExitPolicy = policies.NewExitPolicy(types.ExitPolicyOnSuccess)
	}
	if deps.Metrics == nil {
		deps.Metrics = noopFlowMetrics{}
	}
	deps.Timeouts = normalizeTimeouts(deps.Timeouts)
	flowID := uuid.NewString()
	return &ResolutionMachine{
		deps:   deps,
		logger: log.With().Str("flow", flowID).Logger(),
		state:  types.FlowStateIdle,
		flow:   types.ResolutionContext{FlowID: flowID},
	}, nil
}

// OnTransition registers an observer called after every state change, in
// order, outside the machine lock.
func (m *ResolutionMachine) OnTransition(observer func(types.Transition)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, observer)
}

func (m *ResolutionMachine) State() types.FlowState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *ResolutionMachine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flow.Err
}

// Context returns a copy of the flow context.
func (m *ResolutionMachine) Context() types.ResolutionContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.flow
	if m.flow.PackageMetadata != nil {
		metadata := *m.flow.PackageMetadata
		metadata.Bundles = append([]types.BundleDescriptor(nil), metadata.Bundles...)
		snapshot.PackageMetadata = &metadata
	}
	snapshot.Candidates = append([]types.BundleDescriptor(nil), m.flow.Candidates...)
	return snapshot
}

// Open shows the menu: the flow waits for a package or session id.
func (m *ResolutionMachine) Open() error {
	if err := m.acquire(types.FlowStateIdle); err != nil {
		return err
	}
	defer m.release()
	m.commit(m.generation(), func() {
		m.moveLocked(types.FlowStateAwaitingInput, nil)
	})
	return nil
}

// Submit starts the flow from an input descriptor and drives it until it
// needs a flavor choice or reaches a terminal state. The returned error is
// the failure the flow ended with, or a rejection that left it unchanged.
func (m *ResolutionMachine) Submit(ctx context.Context, input types.Input) (types.FlowState, error) {
	if err := m.acquire(types.FlowStateIdle, types.FlowStateAwaitingInput); err != nil {
		return m.State(), err
	}
	defer m.release()

	gen := m.generation()
	if input.Empty() {
		m.commit(gen, func() {
			if m.state == types.FlowStateIdle {
				m.moveLocked(types.FlowStateAwaitingInput, nil)
			}
		})
		return m.State(), nil
	}

	ctx = m.logger.WithContext(ctx)
	if input.SessionID != "" {
		m.begin(flowKindSession)
		m.launchSession(ctx, gen, input.SessionID)
	} else {
		m.begin(flowKindPackage)
		m.resolvePackage(ctx, gen, input)
	}
	return m.outcome()
}

// ChooseFlavor answers a pending flavor selection and continues the flow.
func (m *ResolutionMachine) ChooseFlavor(ctx context.Context, flavor types.Flavor) (types.FlowState, error) {
	if flavor != types.FlavorDev && flavor != types.FlavorProd {
		return m.State(), errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown bundle flavor: %q", flavor))
	}
	if err := m.acquire(types.FlowStateFlavorSelection); err != nil {
		return m.State(), err
	}
	defer m.release()

	ctx = m.logger.WithContext(ctx)
	gen := m.generation()
	proceed := false
	if !m.commit(gen, func() { proceed = m.selectLocked(flavor) }) {
		return m.outcome()
	}
	if proceed {
		m.installBundle(ctx, gen)
	}
	return m.outcome()
}

// Reset restores the original application bundle. It is accepted in any
// non-terminal state and cancels a phase in flight; that phase's result is
// discarded.
func (m *ResolutionMachine) Reset(ctx context.Context) (types.FlowState, error) {
	m.mu.Lock()
	if m.state.Terminal() {
		state := m.state
		m.mu.Unlock()
		return state, fmt.Errorf("%w: reset from %s", types.ErrInvalidTransition, state)
	}
	if m.resetting {
		state := m.state
		m.mu.Unlock()
		return state, types.ErrFlowInFlight
	}
	m.resetting = true
	m.gen++
	gen := m.gen
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.kind == "" {
		m.kind = flowKindReset
		m.deps.Metrics.IncFlowStarted(flowKindReset)
	}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.resetting = false
		m.mu.Unlock()
	}()

	ctx = m.logger.WithContext(ctx)
	if m.deps.Assets != nil {
		m.deps.Assets.Set(nil)
	}
	err := m.run(ctx, gen, "reset", m.deps.Timeouts.Install, func(ctx context.Context) error {
		if err := m.deps.Installer.Reset(ctx); err != nil {
			return &types.InstallerError{Op: "reset", Err: err}
		}
		return nil
	})
	m.finish(gen, types.FlowStateReset, err)
	return m.outcome()
}

func (m *ResolutionMachine) launchSession(ctx context.Context, gen uint64, sessionID string) {
	if !m.commit(gen, func() {
		m.flow.SessionID = sessionID
		m.moveLocked(types.FlowStateMetadataLoading, nil)
	}) {
		return
	}
	var metadata types.SessionMetadata
	err := m.run(ctx, gen, "session_metadata", m.deps.Timeouts.Metadata, func(ctx context.Context) error {
		var err error
		metadata, err = m.deps.Metadata.FetchSessionMetadata(ctx, sessionID)
		return err
	})
	if err == nil && strings.TrimSpace(metadata.Host) == "" {
		err = &types.ParseError{Kind: types.MetadataKindSession, Err: errSessionWithoutHost}
	}
	if err != nil {
		m.fail(gen, err)
		return
	}
	log.Ctx(ctx).Info().Str("session_id", sessionID).Str("host", metadata.Host).Msg("launching live session")
	err = m.run(ctx, gen, "session_launch", m.deps.Timeouts.Install, func(ctx context.Context) error {
		if err := m.deps.Installer.LaunchLiveSession(ctx, metadata.Host); err != nil {
			return &types.InstallerError{Op: "launch live session", Err: err}
		}
		return nil
	})
	m.finish(gen, types.FlowStateSessionLaunched, err)
}

func (m *ResolutionMachine) resolvePackage(ctx context.Context, gen uint64, input types.Input) {
	if !m.commit(gen, func() {
		m.flow.PackageID = input.PackageID
		m.flow.BundleID = input.BundleID
	}) {
		return
	}
	if input.BundleID != "" {
		m.installBundle(ctx, gen)
		return
	}

	if !m.commit(gen, func() { m.moveLocked(types.FlowStateMetadataLoading, nil) }) {
		return
	}
	var metadata types.PackageMetadata
	err := m.run(ctx, gen, "package_metadata", m.deps.Timeouts.Metadata, func(ctx context.Context) error {
		var err error
		metadata, err = m.deps.Metadata.FetchPackageMetadata(ctx, input.PackageID)
		return err
	})
	if err != nil {
		m.fail(gen, err)
		return
	}
	proceed := false
	if !m.commit(gen, func() {
		m.flow.PackageMetadata = &metadata
		m.flow.Candidates = PlatformBundles(metadata, m.deps.Platform)
		proceed = m.selectLocked(types.FlavorNone)
	}) {
		return
	}
	if proceed {
		m.installBundle(ctx, gen)
	}
}

// selectLocked runs the bundle selector on the fetched metadata and reports
// whether the flow can go on to download.
func (m *ResolutionMachine) selectLocked(flavor types.Flavor) bool {
	bundle, err := SelectBundle(*m.flow.PackageMetadata, m.deps.Platform, flavor)
	switch {
	case errors.Is(err, types.ErrFlavorRequired):
		m.moveLocked(types.FlowStateFlavorSelection, nil)
		return false
	case err != nil:
		m.failLocked(err)
		return false
	}
	m.flow.BundleID = bundle.ID
	return true
}

func (m *ResolutionMachine) installBundle(ctx context.Context, gen uint64) {
	var packageID, bundleID string
	if !m.commit(gen, func() {
		packageID, bundleID = m.flow.PackageID, m.flow.BundleID
		m.moveLocked(types.FlowStateDownloading, nil)
	}) {
		return
	}
	log.Ctx(ctx).Info().Str("package_id", packageID).Str("bundle_id", bundleID).Msg("downloading bundle")
	err := m.run(ctx, gen, "download", m.deps.Timeouts.Download, func(ctx context.Context) error {
		if err := m.deps.Installer.Download(ctx, packageID, bundleID); err != nil {
			return &types.InstallerError{Op: "download", Err: err}
		}
		return nil
	})
	if err != nil {
		m.fail(gen, err)
		return
	}
	if !m.commit(gen, func() {
		m.flow.DownloadCompleted = true
		m.moveLocked(types.FlowStateInstallPending, nil)
	}) {
		return
	}
	err = m.run(ctx, gen, "install", m.deps.Timeouts.Install, func(ctx context.Context) error {
		if err := m.deps.Installer.Install(ctx); err != nil {
			return &types.InstallerError{Op: "install", Err: err}
		}
		return nil
	})
	m.finish(gen, types.FlowStateInstalled, err)
}

// run executes one phase under its timeout. The phase context is cancelled
// by Reset.
func (m *ResolutionMachine) run(ctx context.Context, gen uint64, phase string, timeout time.Duration, op func(context.Context) error) error {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return errSuperseded
	}
	phaseCtx, cancel := context.WithTimeout(ctx, timeout)
	m.cancel = cancel
	m.mu.Unlock()

	started := time.Now()
	err := op(phaseCtx)
	cancel()
	m.deps.Metrics.ObservePhaseDuration(phase, time.Since(started).Seconds())

	m.mu.Lock()
	if m.gen == gen {
		m.cancel = nil
	}
	m.mu.Unlock()
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("phase", phase).Msg("phase failed")
	}
	return err
}

// finish ends an install, session launch or reset step and applies the
// exit policy.
func (m *ResolutionMachine) finish(gen uint64, step types.FlowState, err error) {
	exit := m.deps.ExitPolicy.ExitAfter(step, err)
	var reached types.FlowState
	if !m.commit(gen, func() {
		if err != nil {
			m.failLocked(err)
		} else {
			m.moveLocked(step, nil)
		}
		m.flow.ExitRequested = exit
		reached = m.state
	}) {
		return
	}
	if exit && m.deps.Lifecycle != nil {
		m.logger.Info().Str("state", string(reached)).Msg("requesting application exit")
		m.deps.Lifecycle.RequestExit(string(reached))
	}
}

func (m *ResolutionMachine) fail(gen uint64, err error) {
	m.commit(gen, func() { m.failLocked(err) })
}

func (m *ResolutionMachine) failLocked(err error) {
	m.flow.Err = err
	m.moveLocked(types.FlowStateFailed, err)
}

// moveLocked records a state change. The caller holds mu; observers are
// notified by commit once it is released.
func (m *ResolutionMachine) moveLocked(to types.FlowState, err error) {
	from := m.state
	m.state = to
	m.pending = append(m.pending, types.Transition{
		FlowID: m.flow.FlowID,
		From:   from,
		To:     to,
		Err:    err,
	})
	var event *zerolog.Event
	if err != nil {
		event = m.logger.Warn().Err(err)
	} else {
		event = m.logger.Debug()
	}
	event.Str("from", string(from)).Str("to", string(to)).Msg("flow transition")
	if to.Terminal() {
		m.deps.Metrics.IncFlowCompleted(m.kind, string(to))
	}
}

// commit applies update if no reset superseded the flow since gen was
// taken, then notifies observers of the resulting transitions.
func (m *ResolutionMachine) commit(gen uint64, update func()) bool {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return false
	}
	update()
	pending := m.pending
	m.pending = nil
	observers := slices.Clone(m.observers)
	m.mu.Unlock()

	for _, transition := range pending {
		for _, observer := range observers {
			observer(transition)
		}
	}
	return true
}

func (m *ResolutionMachine) acquire(allowed ...types.FlowState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight || m.resetting {
		return types.ErrFlowInFlight
	}
	for _, state := range allowed {
		if m.state == state {
			m.inFlight = true
			return nil
		}
	}
	return fmt.Errorf("%w: from %s", types.ErrInvalidTransition, m.state)
}

func (m *ResolutionMachine) release() {
	m.mu.Lock()
	m.inFlight = false
	m.mu.Unlock()
}

func (m *ResolutionMachine) begin(kind string) {
	m.mu.Lock()
	m.kind = kind
	m.mu.Unlock()
	m.deps.Metrics.IncFlowStarted(kind)
}

func (m *ResolutionMachine) generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

func (m *ResolutionMachine) outcome() (types.FlowState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.flow.Err
}

func normalizeTimeouts(timeouts PhaseTimeouts) PhaseTimeouts {
	defaults := DefaultPhaseTimeouts()
	if timeouts.Metadata <= 0 {
		timeouts.Metadata = defaults.Metadata
	}
	if timeouts.Download <= 0 {
		timeouts.Download = defaults.Download
	}
	if timeouts.Install <= 0 {
		timeouts.Install = defaults.Install
	}
	return timeouts
}

type noopFlowMetrics struct{}

func (noopFlowMetrics) IncFlowStarted(string)                {}
func (noopFlowMetrics) IncFlowCompleted(string, string)      {}
func (noopFlowMetrics) ObservePhaseDuration(string, float64) {}
