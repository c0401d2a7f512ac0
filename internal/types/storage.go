package types

import (
	"net/url"
	"strings"
)

// StorageLocation is the remote store holding metadata, bundles and assets.
// Suffix is appended verbatim to every URL, typically an access token query.
type StorageLocation struct {
	BaseURL string
	Suffix  string
}

// URL joins path segments onto the base URL and appends the suffix.
func (l StorageLocation) URL(segments ...string) string {
	var builder strings.Builder
	builder.WriteString(strings.TrimRight(strings.TrimSpace(l.BaseURL), "/"))
	for _, segment := range segments {
		builder.WriteString("/")
		builder.WriteString(url.PathEscape(strings.Trim(segment, "/")))
	}
	builder.WriteString(l.Suffix)
	return builder.String()
}

func (l StorageLocation) MetadataURL(kind MetadataKind, id string) string {
	return l.URL(string(kind), id, "metadata.json")
}

func (l StorageLocation) BundleURL(packageID string, bundleID string) string {
	return l.URL(string(MetadataKindPackage), packageID, bundleID)
}
