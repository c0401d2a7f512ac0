package adapters

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livebundle/internal/types"
)

func bundleArchive(t *testing.T, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entry, err := writer.Create("index.android.bundle")
	require.NoError(t, err)
	_, err = entry.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func newBundleServer(t *testing.T, archives map[string][]byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := archives[r.URL.Path]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFileInstallerAdapter_DownloadAndInstall(t *testing.T) {
	server := newBundleServer(t, map[string][]byte{
		"/packages/pkg-1/bundle-a": bundleArchive(t, "console.log('a')"),
	})
	dir := t.TempDir()
	installer := NewFileInstallerAdapter(dir, types.StorageLocation{BaseURL: server.URL})
	ctx := context.Background()

	require.NoError(t, installer.Download(ctx, "pkg-1", "bundle-a"))
	state, err := installer.State(ctx)
	require.NoError(t, err)
	assert.False(t, state.IsBundleInstalled, "download alone must not install")
	_, err = os.Stat(installer.BundlePath())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, installer.Install(ctx))
	data, err := os.ReadFile(installer.BundlePath())
	require.NoError(t, err)
	assert.Equal(t, "console.log('a')", string(data))

	state, err = installer.State(ctx)
	require.NoError(t, err)
	want := types.InstalledBundleState{IsBundleInstalled: true, PackageID: "pkg-1", BundleID: "bundle-a"}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "LB-Bundle-*.zip"))
	require.NoError(t, err)
	assert.Empty(t, matches, "downloaded archive should be removed")
}

func TestFileInstallerAdapter_StateSurvivesRestart(t *testing.T) {
	server := newBundleServer(t, map[string][]byte{
		"/packages/pkg/b": bundleArchive(t, "x"),
	})
	dir := t.TempDir()
	location := types.StorageLocation{BaseURL: server.URL}
	ctx := context.Background()

	first := NewFileInstallerAdapter(dir, location)
	require.NoError(t, first.Download(ctx, "pkg", "b"))
	require.NoError(t, first.Install(ctx))

	second := NewFileInstallerAdapter(dir, location)
	state, err := second.State(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsBundleInstalled)
	assert.Equal(t, "b", state.BundleID)
}

func TestFileInstallerAdapter_DownloadNotFound(t *testing.T) {
	server := newBundleServer(t, nil)
	installer := NewFileInstallerAdapter(t.TempDir(), types.StorageLocation{BaseURL: server.URL})

	err := installer.Download(context.Background(), "pkg", "missing")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), "bundle download failed")
}

func TestFileInstallerAdapter_DownloadRejectsNonZip(t *testing.T) {
	server := newBundleServer(t, map[string][]byte{
		"/packages/pkg/b": []byte("not a zip"),
	})
	installer := NewFileInstallerAdapter(t.TempDir(), types.StorageLocation{BaseURL: server.URL})

	err := installer.Download(context.Background(), "pkg", "b")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestFileInstallerAdapter_InstallWithoutDownload(t *testing.T) {
	installer := NewFileInstallerAdapter(t.TempDir(), types.StorageLocation{BaseURL: "http://example.test"})

	err := installer.Install(context.Background())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestFileInstallerAdapter_Reset(t *testing.T) {
	server := newBundleServer(t, map[string][]byte{
		"/packages/pkg/b": bundleArchive(t, "x"),
	})
	installer := NewFileInstallerAdapter(t.TempDir(), types.StorageLocation{BaseURL: server.URL})
	ctx := context.Background()
	require.NoError(t, installer.Download(ctx, "pkg", "b"))
	require.NoError(t, installer.Install(ctx))
	require.NoError(t, installer.LaunchLiveSession(ctx, "10.0.0.1:8081"))

	require.NoError(t, installer.Reset(ctx))

	state, err := installer.State(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(types.InstalledBundleState{}, state); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	_, err = os.Stat(installer.BundlePath())
	assert.True(t, os.IsNotExist(err))
}

func TestFileInstallerAdapter_LaunchLiveSession(t *testing.T) {
	installer := NewFileInstallerAdapter(t.TempDir(), types.StorageLocation{BaseURL: "http://example.test"})
	ctx := context.Background()

	require.Error(t, installer.LaunchLiveSession(ctx, " "))
	require.NoError(t, installer.LaunchLiveSession(ctx, "192.168.1.20:8081"))

	state, err := installer.State(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsSessionStarted)
	assert.False(t, state.IsBundleInstalled)
	assert.Equal(t, "192.168.1.20:8081", state.SessionHost)
}

func TestFileInstallerAdapter_RequiresIDs(t *testing.T) {
	installer := NewFileInstallerAdapter(t.TempDir(), types.StorageLocation{BaseURL: "http://example.test"})
	err := installer.Download(context.Background(), "", "b")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
