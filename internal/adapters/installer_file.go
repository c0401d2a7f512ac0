package adapters

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"

	"livebundle/internal/ports"
	"livebundle/internal/shared"
	"livebundle/internal/types"
)

const (
	BundleFileName       = "LB-Bundle.js"
	bundleZipPattern     = "LB-Bundle-*.zip"
	installerStateName   = "state.yaml"
	stagedDirName        = "staged"
	activeDirName        = "active"
	defaultConnectTimout = 5 * time.Second
)

// FileInstallerAdapter implements the bundle installer on a local data
// directory. Downloads are unpacked into a staging area so a failed or
// cancelled download never touches the active bundle.
type FileInstallerAdapter struct {
	Dir      string
	Location types.StorageLocation
	Client   *http.Client
	state    StateFileAdapter
	mu       sync.Mutex
}

func NewFileInstallerAdapter(dir string, location types.StorageLocation) *FileInstallerAdapter {
	return &FileInstallerAdapter{
		Dir:      dir,
		Location: location,
		state:    NewStateFileAdapter(filepath.Join(dir, installerStateName)),
	}
}

// BundlePath is where the active bundle lives once installed.
func (a *FileInstallerAdapter) BundlePath() string {
	return filepath.Join(a.Dir, activeDirName, BundleFileName)
}

func (a *FileInstallerAdapter) stagedPath() string {
	return filepath.Join(a.Dir, stagedDirName, BundleFileName)
}

func (a *FileInstallerAdapter) Download(ctx context.Context, packageID string, bundleID string) error {
	if strings.TrimSpace(packageID) == "" || strings.TrimSpace(bundleID) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package id and bundle id are required")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Join(a.Dir, stagedDirName), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create staging directory").
			WithCause(err)
	}
	archive, err := a.fetchArchive(ctx, packageID, bundleID)
	if err != nil {
		return err
	}
	defer os.Remove(archive)

	if err := extractBundle(archive, a.stagedPath()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(a.stagedPath())
		return err
	}
	state, err := a.state.Load()
	if err != nil {
		return err
	}
	state.Staged = &StagedBundle{PackageID: packageID, BundleID: bundleID}
	if err := a.state.Save(state); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("package_id", packageID).Str("bundle_id", bundleID).Msg("bundle downloaded")
	return nil
}

func (a *FileInstallerAdapter) Install(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	state, err := a.state.Load()
	if err != nil {
		return err
	}
	if state.Staged == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no downloaded bundle to install")
	}
	if err := os.MkdirAll(filepath.Join(a.Dir, activeDirName), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create active bundle directory").
			WithCause(err)
	}
	if err := os.Rename(a.stagedPath(), a.BundlePath()); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to activate bundle").
			WithCause(err)
	}
	state.Current = types.InstalledBundleState{
		IsBundleInstalled: true,
		PackageID:         state.Staged.PackageID,
		BundleID:          state.Staged.BundleID,
	}
	state.Staged = nil
	if err := a.state.Save(state); err != nil {
		return err
	}
	log.Ctx(ctx).Info().
		Str("package_id", state.Current.PackageID).
		Str("bundle_id", state.Current.BundleID).
		Msg("bundle installed")
	return nil
}

// Reset removes installed and staged bundles and leaves any live session.
// The recorded state is cleared even when removing files fails.
func (a *FileInstallerAdapter) Reset(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var firstErr error
	for _, dir := range []string{activeDirName, stagedDirName} {
		if err := os.RemoveAll(filepath.Join(a.Dir, dir)); err != nil && firstErr == nil {
			firstErr = errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to remove bundle files").
				WithCause(err)
		}
	}
	if err := a.state.Save(InstallerStateFile{}); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr == nil {
		log.Ctx(ctx).Info().Msg("installer reset to original bundle")
	}
	return firstErr
}

func (a *FileInstallerAdapter) LaunchLiveSession(ctx context.Context, host string) error {
	if strings.TrimSpace(host) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("live session host is empty")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	state, err := a.state.Load()
	if err != nil {
		return err
	}
	state.Current.IsSessionStarted = true
	state.Current.SessionHost = host
	if err := a.state.Save(state); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("host", host).Msg("live session started")
	return nil
}

func (a *FileInstallerAdapter) State(_ context.Context) (types.InstalledBundleState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	state, err := a.state.Load()
	if err != nil {
		return types.InstalledBundleState{}, err
	}
	return state.Current, nil
}

func (a *FileInstallerAdapter) fetchArchive(ctx context.Context, packageID string, bundleID string) (string, error) {
	url := a.Location.BundleURL(packageID, bundleID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to create bundle request").
			WithCause(err)
	}
	resp, err := a.client().Do(req)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("bundle download failed").
			WithCause(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		code := errbuilder.CodeInternal
		if resp.StatusCode == http.StatusNotFound {
			code = errbuilder.CodeNotFound
		}
		return "", errbuilder.New().
			WithCode(code).
			WithMsg("bundle download failed").
			WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, url, strings.TrimSpace(string(body))))
	}

	file, err := os.CreateTemp(a.Dir, bundleZipPattern)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create bundle archive").
			WithCause(err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("bundle download interrupted").
			WithCause(err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write bundle archive").
			WithCause(err)
	}
	return file.Name(), nil
}

func (a *FileInstallerAdapter) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	// Bundles can be large: bound the connection, not the transfer.
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			TLSHandshakeTimeout:   defaultConnectTimout,
			ResponseHeaderTimeout: defaultConnectTimout * 6,
		},
	}
}

// extractBundle writes the first file of a bundle archive to dest.
func extractBundle(archive string, dest string) error {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("bundle archive is not a zip file").
			WithCause(err)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		src, err := entry.Open()
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to open bundle archive entry").
				WithCause(err)
		}
		defer src.Close()
		tmp := dest + ".tmp"
		out, err := os.Create(tmp)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create bundle file").
				WithCause(err)
		}
		if _, err := io.Copy(out, src); err != nil {
			out.Close()
			os.Remove(tmp)
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to extract bundle").
				WithCause(err)
		}
		if err := out.Close(); err != nil {
			os.Remove(tmp)
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to write bundle file").
				WithCause(err)
		}
		if !entry.Modified.IsZero() {
			_ = os.Chtimes(tmp, entry.Modified, entry.Modified)
		}
		if err := os.Rename(tmp, dest); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to stage bundle").
				WithCause(err)
		}
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("bundle archive is empty")
}

var _ ports.InstallerPort = (*FileInstallerAdapter)(nil)
