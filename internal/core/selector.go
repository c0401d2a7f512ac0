package core

import (
	"fmt"

	"livebundle/internal/types"
)

// PlatformBundles returns the bundles of a package built for platform, in
// metadata order. The metadata is not modified.
func PlatformBundles(metadata types.PackageMetadata, platform types.Platform) []types.BundleDescriptor {
	matches := make([]types.BundleDescriptor, 0, len(metadata.Bundles))
	for _, bundle := range metadata.Bundles {
		if bundle.Platform == platform {
			matches = append(matches, bundle)
		}
	}
	return matches
}

// SelectBundle picks the bundle to install for platform. A single bundle
// for the platform is returned whatever the flavor. With several bundles a
// flavor is required and the first bundle of that flavor wins.
func SelectBundle(metadata types.PackageMetadata, platform types.Platform, flavor types.Flavor) (types.BundleDescriptor, error) {
	candidates := PlatformBundles(metadata, platform)
	switch len(candidates) {
	case 0:
		return types.BundleDescriptor{}, fmt.Errorf("%w: %s platform in package %s", types.ErrNoBundleForPlatform, platform, metadata.PackageID)
	case 1:
		return candidates[0], nil
	}
	if flavor == types.FlavorNone {
		return types.BundleDescriptor{}, fmt.Errorf("%w: %d %s bundles in package %s", types.ErrFlavorRequired, len(candidates), platform, metadata.PackageID)
	}
	for _, candidate := range candidates {
		if candidate.Dev == flavor.Dev() {
			return candidate, nil
		}
	}
	return types.BundleDescriptor{}, fmt.Errorf("%w: no %s bundle for %s platform in package %s", types.ErrNoBundleForFlavor, flavor, platform, metadata.PackageID)
}

// Flavors lists the distinct flavors offered by candidates, in order.
func Flavors(candidates []types.BundleDescriptor) []types.Flavor {
	seen := map[types.Flavor]bool{}
	flavors := []types.Flavor{}
	for _, candidate := range candidates {
		flavor := candidate.Flavor()
		if seen[flavor] {
			continue
		}
		seen[flavor] = true
		flavors = append(flavors, flavor)
	}
	return flavors
}
