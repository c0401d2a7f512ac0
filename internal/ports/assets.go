package ports

import "livebundle/internal/types"

// AssetSource rewrites the URI an asset is loaded from.
type AssetSource func(asset types.Asset) string

// AssetSourcePort owns the single process-wide asset source.
type AssetSourcePort interface {
	// Set replaces the current source. A nil source restores the packaged
	// location.
	Set(source AssetSource)
	Resolve(asset types.Asset) string
	Active() bool
}
