package app

import (
	"context"

	"livebundle/internal/core"
	"livebundle/internal/types"
)

type Config struct {
	Storage             types.StorageLocation
	Platform            types.Platform
	DataDir             string
	ExitPolicy          types.ExitPolicyMode
	Timeouts            core.PhaseTimeouts
	AssetPlatformSuffix bool
}

// FlavorChooser asks the user which flavor to install when a package has
// several bundles for the platform.
type FlavorChooser func(ctx context.Context, candidates []types.BundleDescriptor) (types.Flavor, error)

type InitializeResult struct {
	Installed         types.InstalledBundleState
	AssetSourceActive bool
}

type ResolveRequest struct {
	PackageID    string
	SessionID    string
	BundleID     string
	Flavor       types.Flavor
	ChooseFlavor FlavorChooser
	OnTransition func(types.Transition)
}

type ResolveResult struct {
	FlowID        string
	State         types.FlowState
	PackageID     string
	SessionID     string
	BundleID      string
	Candidates    []types.BundleDescriptor
	ExitRequested bool
}

type OpenURLRequest struct {
	URL          string
	Flavor       types.Flavor
	ChooseFlavor FlavorChooser
	OnTransition func(types.Transition)
}

type OpenURLResult struct {
	Intent types.Intent
	// Resolve is set when the link named a package or session.
	Resolve *ResolveResult
	// Status is set when the link opened the menu.
	Status *StatusResult
}

type ScanRequest struct {
	Payload      string
	Flavor       types.Flavor
	ChooseFlavor FlavorChooser
	OnTransition func(types.Transition)
}

type ResetResult struct {
	FlowID        string
	State         types.FlowState
	ExitRequested bool
}

type StatusResult struct {
	Installed         types.InstalledBundleState `yaml:"installed"`
	AssetSourceActive bool                       `yaml:"asset_source_active"`
	StorageURL        string                     `yaml:"storage_url"`
	Platform          types.Platform             `yaml:"platform"`
}

type MetadataRequest struct {
	Kind types.MetadataKind
	ID   string
}

type MetadataResult struct {
	Kind    types.MetadataKind     `yaml:"kind"`
	ID      string                 `yaml:"id"`
	URL     string                 `yaml:"url"`
	Package *types.PackageMetadata `yaml:"package,omitempty"`
	Session *types.SessionMetadata `yaml:"session,omitempty"`
}

type AssetRequest struct {
	Asset types.Asset
}

type AssetResult struct {
	URI    string
	Remote bool
}
