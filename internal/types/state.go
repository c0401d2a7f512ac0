package types

// FlowState is a state of the bundle resolution state machine.
type FlowState string

const (
	FlowStateIdle            FlowState = "idle"
	FlowStateAwaitingInput   FlowState = "awaiting-input"
	FlowStateMetadataLoading FlowState = "metadata-loading"
	FlowStateFlavorSelection FlowState = "flavor-selection"
	FlowStateDownloading     FlowState = "downloading"
	FlowStateInstallPending  FlowState = "install-pending"
	FlowStateInstalled       FlowState = "installed"
	FlowStateSessionLaunched FlowState = "session-launched"
	FlowStateReset           FlowState = "reset"
	FlowStateFailed          FlowState = "failed"
)

// Terminal reports whether no further transition can leave the state.
func (s FlowState) Terminal() bool {
	switch s {
	case FlowStateInstalled, FlowStateSessionLaunched, FlowStateReset, FlowStateFailed:
		return true
	}
	return false
}

// InstalledBundleState is the installer's persisted view of what the
// application currently runs.
type InstalledBundleState struct {
	IsBundleInstalled bool   `json:"isBundleInstalled" yaml:"is_bundle_installed"`
	IsSessionStarted  bool   `json:"isSessionStarted" yaml:"is_session_started"`
	PackageID         string `json:"packageId,omitempty" yaml:"package_id,omitempty"`
	BundleID          string `json:"bundleId,omitempty" yaml:"bundle_id,omitempty"`
	SessionHost       string `json:"sessionHost,omitempty" yaml:"session_host,omitempty"`
}

// Input describes what a flow starts from. A session id takes precedence
// over a package id.
type Input struct {
	PackageID string
	SessionID string
	BundleID  string
}

func (i Input) Empty() bool {
	return i.PackageID == "" && i.SessionID == ""
}

// ResolutionContext is the mutable state threaded through one flow.
type ResolutionContext struct {
	FlowID            string
	PackageID         string
	SessionID         string
	BundleID          string
	PackageMetadata   *PackageMetadata
	Candidates        []BundleDescriptor
	DownloadCompleted bool
	ExitRequested     bool
	Err               error
}

// Transition is emitted for every state change of a flow.
type Transition struct {
	FlowID string
	From   FlowState
	To     FlowState
	Err    error
}

type Intent struct {
	Kind IntentKind
	ID   string
}

// Asset describes a packaged image as seen by the image-loading pipeline.
type Asset struct {
	Hash        string
	Name        string
	Type        string
	PackagedURI string
}
