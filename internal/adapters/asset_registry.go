package adapters

import (
	"sync/atomic"

	"livebundle/internal/ports"
	"livebundle/internal/types"
)

// AssetRegistry holds the asset source every asset load goes through.
// Replacing it is atomic; readers never see a partially installed source.
type AssetRegistry struct {
	source atomic.Pointer[ports.AssetSource]
}

var defaultAssetRegistry AssetRegistry

// DefaultAssetRegistry returns the process-wide registry.
func DefaultAssetRegistry() *AssetRegistry {
	return &defaultAssetRegistry
}

func NewAssetRegistry() *AssetRegistry {
	return &AssetRegistry{}
}

func (r *AssetRegistry) Set(source ports.AssetSource) {
	if source == nil {
		r.source.Store(nil)
		return
	}
	r.source.Store(&source)
}

// Resolve returns the URI asset loads from: the registered source's answer,
// or the packaged location when no source is set.
func (r *AssetRegistry) Resolve(asset types.Asset) string {
	if source := r.source.Load(); source != nil {
		return (*source)(asset)
	}
	return asset.PackagedURI
}

func (r *AssetRegistry) Active() bool {
	return r.source.Load() != nil
}

var _ ports.AssetSourcePort = (*AssetRegistry)(nil)
