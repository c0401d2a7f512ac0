package core

import (
	"livebundle/internal/ports"
	"livebundle/internal/types"
)

// NewRemoteAssetSource resolves assets against the store by content hash.
// With a platform the file is named name.platform.type, otherwise
// name.type.
func NewRemoteAssetSource(location types.StorageLocation, platform types.Platform) ports.AssetSource {
	return func(asset types.Asset) string {
		name := asset.Name
		if platform != "" {
			name += "." + string(platform)
		}
		if asset.Type != "" {
			name += "." + asset.Type
		}
		return location.URL("assets", asset.Hash, name)
	}
}
