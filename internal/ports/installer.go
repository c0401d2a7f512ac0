package ports

import (
	"context"

	"livebundle/internal/types"
)

// InstallerPort is the native bundle capability the client drives. The
// client only calls it; persistence of what is installed belongs to the
// implementation.
type InstallerPort interface {
	// Download fetches a bundle of a package and stages it for Install.
	Download(ctx context.Context, packageID string, bundleID string) error

	// Install activates the staged bundle. The host application must reload
	// its bundle context afterwards.
	Install(ctx context.Context) error

	// Reset restores the bundle the application shipped with and leaves any
	// live session.
	Reset(ctx context.Context) error

	// LaunchLiveSession points the application at a remotely served bundle.
	LaunchLiveSession(ctx context.Context, host string) error

	// State returns a snapshot of what the application currently runs.
	State(ctx context.Context) (types.InstalledBundleState, error)
}
