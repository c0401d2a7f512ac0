package app

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"livebundle/internal/types"
)

// FailureHints returns suggestions for a failed flow. Errors without a
// known remedy give no hints.
func FailureHints(err error, platform types.Platform) []string {
	if err == nil {
		return nil
	}
	var hints []string
	var fetchErr *types.FetchError
	var parseErr *types.ParseError
	switch {
	case errors.Is(err, types.ErrNoBundleForPlatform):
		hints = append(hints, fmt.Sprintf("hint: the package has no %s bundle; check --platform or the package id", platform))
	case errors.Is(err, types.ErrFlavorRequired):
		hints = append(hints, "hint: pass --flavor dev or --flavor prod, or run interactively to choose")
	case errors.Is(err, types.ErrNoBundleForFlavor):
		hints = append(hints, "hint: the requested flavor is not published; try the other flavor")
	case errors.As(err, &fetchErr):
		switch {
		case fetchErr.Status == http.StatusNotFound:
			hints = append(hints, fmt.Sprintf("hint: no %s found at %s; check the id and storage_url", fetchErr.Kind, fetchErr.URL))
		case fetchErr.Status == http.StatusUnauthorized || fetchErr.Status == http.StatusForbidden:
			hints = append(hints, "hint: the store rejected the request; check storage_suffix carries a valid token")
		case fetchErr.Status == 0:
			hints = append(hints, "hint: the store is unreachable; check storage_url and network access")
		}
	case errors.As(err, &parseErr):
		hints = append(hints, fmt.Sprintf("hint: %s does not serve JSON metadata", parseErr.URL))
	}
	return hints
}

// EmitHints writes hint messages to w.
func EmitHints(w io.Writer, hints []string) {
	for _, h := range hints {
		fmt.Fprintln(w, h)
	}
}
