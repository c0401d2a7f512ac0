package app

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Initialize reads the installer snapshot once at startup. An application
// running a downloaded bundle loads its assets from the store.
func (s Service) Initialize(ctx context.Context) (InitializeResult, error) {
	state, err := s.Installer.State(ctx)
	if err != nil {
		return InitializeResult{}, err
	}
	if s.Assets != nil {
		if state.IsBundleInstalled {
			s.Assets.Set(s.remoteAssetSource())
			log.Ctx(ctx).Debug().
				Str("package_id", state.PackageID).
				Str("bundle_id", state.BundleID).
				Msg("remote asset source registered")
		} else {
			s.Assets.Set(nil)
		}
	}
	return InitializeResult{
		Installed:         state,
		AssetSourceActive: s.Assets != nil && s.Assets.Active(),
	}, nil
}

func (s Service) Status(ctx context.Context) (StatusResult, error) {
	state, err := s.Installer.State(ctx)
	if err != nil {
		return StatusResult{}, err
	}
	return StatusResult{
		Installed:         state,
		AssetSourceActive: s.Assets != nil && s.Assets.Active(),
		StorageURL:        s.Config.Storage.BaseURL,
		Platform:          s.Config.Platform,
	}, nil
}

// ResolveAsset returns the URI an asset is loaded from.
func (s Service) ResolveAsset(req AssetRequest) AssetResult {
	if s.Assets == nil {
		return AssetResult{URI: req.Asset.PackagedURI}
	}
	return AssetResult{
		URI:    s.Assets.Resolve(req.Asset),
		Remote: s.Assets.Active(),
	}
}
