//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"livebundle/internal/adapters"
	"livebundle/internal/app"
	"livebundle/internal/types"
)

const storeToken = "secret"

// storeScript serves a small live-update store. Every request must carry the
// access token query, mirroring a signed storage suffix.
const storeScript = `
import io, json, zipfile
from http.server import BaseHTTPRequestHandler, HTTPServer
from urllib.parse import urlparse, parse_qs

def bundle(content):
    buf = io.BytesIO()
    with zipfile.ZipFile(buf, "w") as archive:
        archive.writestr("index.android.bundle", content)
    return buf.getvalue()

FILES = {
    "/packages/single/metadata.json": json.dumps({"packageId": "single", "bundles": [
        {"id": "single-1", "platform": "android", "dev": False},
        {"id": "single-ios", "platform": "ios", "dev": False},
    ]}).encode(),
    "/packages/single/single-1": bundle("console.log('single');"),
    "/packages/flavored/metadata.json": json.dumps({"id": "flavored", "bundles": [
        {"id": "flavored-dev", "platform": "android", "dev": True},
        {"id": "flavored-prod", "platform": "android", "dev": False},
    ]}).encode(),
    "/packages/flavored/flavored-dev": bundle("console.log('dev');"),
    "/packages/flavored/flavored-prod": bundle("console.log('prod');"),
    "/sessions/live/metadata.json": json.dumps({"host": "192.168.1.20:8081"}).encode(),
}

class Handler(BaseHTTPRequestHandler):
    def do_GET(self):
        parsed = urlparse(self.path)
        if parse_qs(parsed.query).get("token") != ["` + storeToken + `"]:
            self.send_response(403)
            self.end_headers()
            return
        data = FILES.get(parsed.path)
        if data is None:
            self.send_response(404)
            self.end_headers()
            self.wfile.write(b"not found")
            return
        self.send_response(200)
        self.send_header("Content-Length", str(len(data)))
        self.end_headers()
        self.wfile.write(data)

    def log_message(self, format, *args):
        return

HTTPServer(("0.0.0.0", 8080), Handler).serve_forever()
`

func TestStoreFlowsWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers integration in short mode")
	}

	ctx := t.Context()
	endpoint, cleanup := startStore(ctx, t)
	t.Cleanup(cleanup)

	dataDir := t.TempDir()
	service := newStoreService(t, endpoint, dataDir)

	result, err := service.Resolve(ctx, app.ResolveRequest{PackageID: "single"})
	require.NoError(t, err)
	require.Equal(t, types.FlowStateInstalled, result.State)
	require.Equal(t, "single-1", result.BundleID)
	require.True(t, result.ExitRequested)

	bundle, err := os.ReadFile(filepath.Join(dataDir, "active", adapters.BundleFileName))
	require.NoError(t, err)
	require.Equal(t, "console.log('single');", string(bundle))

	var states []types.FlowState
	result, err = service.Resolve(ctx, app.ResolveRequest{
		PackageID: "flavored",
		Flavor:    types.FlavorProd,
		OnTransition: func(tr types.Transition) {
			states = append(states, tr.To)
		},
	})
	require.NoError(t, err)
	require.Equal(t, "flavored-prod", result.BundleID)
	want := []types.FlowState{
		types.FlowStateMetadataLoading,
		types.FlowStateFlavorSelection,
		types.FlowStateDownloading,
		types.FlowStateInstallPending,
		types.FlowStateInstalled,
	}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}

	// A fresh service over the same data dir sees the install and serves
	// assets from the store.
	restarted := newStoreService(t, endpoint, dataDir)
	initialized, err := restarted.Initialize(ctx)
	require.NoError(t, err)
	require.True(t, initialized.Installed.IsBundleInstalled)
	require.Equal(t, "flavored", initialized.Installed.PackageID)
	require.True(t, initialized.AssetSourceActive)
	asset := restarted.ResolveAsset(app.AssetRequest{Asset: types.Asset{Hash: "abc", Name: "logo", Type: "png"}})
	require.Equal(t, endpoint+"/assets/abc/logo.android.png?token="+storeToken, asset.URI)
	require.True(t, asset.Remote)

	session, err := restarted.Resolve(ctx, app.ResolveRequest{SessionID: "live"})
	require.NoError(t, err)
	require.Equal(t, types.FlowStateSessionLaunched, session.State)
	status, err := restarted.Status(ctx)
	require.NoError(t, err)
	require.True(t, status.Installed.IsSessionStarted)
	require.Equal(t, "192.168.1.20:8081", status.Installed.SessionHost)

	reset, err := restarted.Reset(ctx)
	require.NoError(t, err)
	require.Equal(t, types.FlowStateReset, reset.State)
	status, err = restarted.Status(ctx)
	require.NoError(t, err)
	require.False(t, status.Installed.IsBundleInstalled)
	require.False(t, status.Installed.IsSessionStarted)
	require.NoDirExists(t, filepath.Join(dataDir, "active"))
}

func TestStoreFailuresWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers integration in short mode")
	}

	ctx := t.Context()
	endpoint, cleanup := startStore(ctx, t)
	t.Cleanup(cleanup)

	service := newStoreService(t, endpoint, t.TempDir())

	result, err := service.Resolve(ctx, app.ResolveRequest{PackageID: "missing"})
	require.Error(t, err)
	require.Equal(t, types.FlowStateFailed, result.State)
	var fetchErr *types.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusNotFound, fetchErr.Status)
	require.False(t, result.ExitRequested)

	metadata, err := service.FetchMetadata(ctx, app.MetadataRequest{Kind: types.MetadataKindPackage, ID: "flavored"})
	require.NoError(t, err)
	require.NotNil(t, metadata.Package)
	require.Equal(t, "flavored", metadata.Package.PackageID)

	unsigned := app.NewService(app.Config{
		Storage:  types.StorageLocation{BaseURL: endpoint},
		Platform: types.PlatformAndroid,
		DataDir:  t.TempDir(),
	})
	unsigned.Lifecycle = adapters.NewExitSignal()
	_, err = unsigned.FetchMetadata(ctx, app.MetadataRequest{Kind: types.MetadataKindSession, ID: "live"})
	require.Error(t, err)
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusForbidden, fetchErr.Status)

	result, err = service.Resolve(ctx, app.ResolveRequest{PackageID: "single", BundleID: "single-ios"})
	require.Error(t, err)
	require.Equal(t, types.FlowStateFailed, result.State)
	var installErr *types.InstallerError
	require.True(t, errors.As(err, &installErr))
	require.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(installErr.Err))
}

func newStoreService(t *testing.T, endpoint string, dataDir string) app.Service {
	t.Helper()
	service := app.NewService(app.Config{
		Storage: types.StorageLocation{
			BaseURL: endpoint,
			Suffix:  "?token=" + storeToken,
		},
		Platform:            types.PlatformAndroid,
		DataDir:             dataDir,
		ExitPolicy:          types.ExitPolicyOnSuccess,
		AssetPlatformSuffix: true,
	})
	service.Assets = adapters.NewAssetRegistry()
	service.Lifecycle = adapters.NewExitSignal()
	return service
}

func startStore(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "python:3.12-alpine",
		ExposedPorts: []string{"8080/tcp"},
		Cmd:          []string{"python", "-c", storeScript},
		WaitingFor:   wait.ForListeningPort("8080/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8080/tcp")
	require.NoError(t, err)

	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())
	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return endpoint, cleanup
}
