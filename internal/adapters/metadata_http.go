package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"livebundle/internal/ports"
	"livebundle/internal/types"
)

const (
	defaultMetadataTimeout = 30 * time.Second
	maxMetadataBytes       = 1 << 20
	maxErrorBodyBytes      = 4096
)

// MetadataHTTPAdapter fetches package and session metadata documents from
// the remote store. It never retries.
type MetadataHTTPAdapter struct {
	Location types.StorageLocation
	Timeout  time.Duration
	Client   *http.Client
}

func NewMetadataHTTPAdapter(location types.StorageLocation, timeout time.Duration) MetadataHTTPAdapter {
	if timeout <= 0 {
		timeout = defaultMetadataTimeout
	}
	return MetadataHTTPAdapter{
		Location: location,
		Timeout:  timeout,
	}
}

func (a MetadataHTTPAdapter) FetchPackageMetadata(ctx context.Context, packageID string) (types.PackageMetadata, error) {
	var metadata types.PackageMetadata
	if err := a.fetch(ctx, types.MetadataKindPackage, packageID, &metadata); err != nil {
		return types.PackageMetadata{}, err
	}
	if metadata.PackageID == "" {
		metadata.PackageID = packageID
	}
	return metadata, nil
}

func (a MetadataHTTPAdapter) FetchSessionMetadata(ctx context.Context, sessionID string) (types.SessionMetadata, error) {
	var metadata types.SessionMetadata
	if err := a.fetch(ctx, types.MetadataKindSession, sessionID, &metadata); err != nil {
		return types.SessionMetadata{}, err
	}
	return metadata, nil
}

func (a MetadataHTTPAdapter) fetch(ctx context.Context, kind types.MetadataKind, id string, target any) error {
	if strings.TrimSpace(a.Location.BaseURL) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("storage url is empty")
	}
	if strings.TrimSpace(id) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(string(kind) + " id is empty")
	}
	url := a.Location.MetadataURL(kind, id)
	log.Ctx(ctx).Debug().Str("kind", string(kind)).Str("id", id).Msg("fetching metadata")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to create metadata request").
			WithCause(err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := a.client().Do(req)
	if err != nil {
		return &types.FetchError{Kind: kind, URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &types.FetchError{
			Kind:   kind,
			URL:    url,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataBytes+1))
	if err != nil {
		return &types.FetchError{Kind: kind, URL: url, Status: resp.StatusCode, Err: err}
	}
	if len(body) > maxMetadataBytes {
		return &types.ParseError{Kind: kind, URL: url, Err: fmt.Errorf("document exceeds %d bytes", maxMetadataBytes)}
	}
	if err := json.Unmarshal(body, target); err != nil {
		return &types.ParseError{Kind: kind, URL: url, Err: err}
	}
	return nil
}

func (a MetadataHTTPAdapter) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = defaultMetadataTimeout
	}
	return &http.Client{Timeout: timeout}
}

var _ ports.MetadataPort = MetadataHTTPAdapter{}
