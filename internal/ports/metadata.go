package ports

import (
	"context"

	"livebundle/internal/types"
)

type MetadataPort interface {
	FetchPackageMetadata(ctx context.Context, packageID string) (types.PackageMetadata, error)
	FetchSessionMetadata(ctx context.Context, sessionID string) (types.SessionMetadata, error)
}
