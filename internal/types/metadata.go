package types

import "encoding/json"

// BundleDescriptor identifies one installable artifact of a package.
type BundleDescriptor struct {
	ID       string   `json:"id" yaml:"id"`
	Platform Platform `json:"platform" yaml:"platform"`
	Dev      bool     `json:"dev" yaml:"dev"`
}

// Flavor returns the flavor matching the descriptor's dev flag.
func (b BundleDescriptor) Flavor() Flavor {
	if b.Dev {
		return FlavorDev
	}
	return FlavorProd
}

type PackageMetadata struct {
	PackageID string             `json:"packageId" yaml:"package_id"`
	Bundles   []BundleDescriptor `json:"bundles" yaml:"bundles"`
}

// UnmarshalJSON accepts "id" as an alias of "packageId".
func (m *PackageMetadata) UnmarshalJSON(data []byte) error {
	var raw struct {
		PackageID string             `json:"packageId"`
		ID        string             `json:"id"`
		Bundles   []BundleDescriptor `json:"bundles"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.PackageID = raw.PackageID
	if m.PackageID == "" {
		m.PackageID = raw.ID
	}
	m.Bundles = raw.Bundles
	return nil
}

type SessionMetadata struct {
	Host string `json:"host" yaml:"host"`
}
