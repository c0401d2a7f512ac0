package app

import (
	"path/filepath"

	"livebundle/internal/adapters"
	"livebundle/internal/core"
	"livebundle/internal/policies"
	"livebundle/internal/ports"
	"livebundle/internal/shared"
	"livebundle/internal/types"
)

type Service struct {
	Config    Config
	Metadata  ports.MetadataPort
	Installer ports.InstallerPort
	Assets    ports.AssetSourcePort
	Lifecycle ports.LifecyclePort
	Metrics   ports.FlowMetricsPort
	Router    core.DeepLinkRouter
}

func NewService(cfg Config) Service {
	if cfg.Platform == "" {
		cfg.Platform = types.PlatformAndroid
	}
	if cfg.DataDir == "" {
		cfg.DataDir = shared.DefaultDataDir()
	}
	return Service{
		Config:    cfg,
		Metadata:  adapters.NewMetadataHTTPAdapter(cfg.Storage, cfg.Timeouts.Metadata),
		Installer: adapters.NewFileInstallerAdapter(filepath.Clean(cfg.DataDir), cfg.Storage),
		Assets:    adapters.DefaultAssetRegistry(),
		Lifecycle: adapters.NewExitSignal(),
		Metrics:   adapters.NoopFlowMetrics{},
		Router:    core.NewDeepLinkRouter(),
	}
}

func (s Service) newMachine(onTransition func(types.Transition)) (*core.ResolutionMachine, error) {
	machine, err := core.NewResolutionMachine(core.MachineDeps{
		Metadata:   s.Metadata,
		Installer:  s.Installer,
		Assets:     s.Assets,
		Lifecycle:  s.Lifecycle,
		ExitPolicy: policies.NewExitPolicy(s.Config.ExitPolicy),
		Metrics:    s.Metrics,
		Platform:   s.Config.Platform,
		Timeouts:   s.Config.Timeouts,
	})
	if err != nil {
		return nil, err
	}
	if onTransition != nil {
		machine.OnTransition(onTransition)
	}
	return machine, nil
}

func (s Service) remoteAssetSource() ports.AssetSource {
	platform := s.Config.Platform
	if !s.Config.AssetPlatformSuffix {
		platform = ""
	}
	return core.NewRemoteAssetSource(s.Config.Storage, platform)
}
