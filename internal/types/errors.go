package types

import (
	"errors"
	"fmt"
)

var (
	ErrNoBundleForPlatform = errors.New("no bundle for platform")
	ErrNoBundleForFlavor   = errors.New("no bundle for flavor")
	ErrFlavorRequired      = errors.New("several bundles match platform, flavor required")
	ErrFlowInFlight        = errors.New("flow operation already in flight")
	ErrInvalidTransition   = errors.New("invalid flow transition")
)

// FetchError reports a metadata request that did not produce a 2xx
// response. Status is zero when the request never got a response.
type FetchError struct {
	Kind   MetadataKind
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s metadata request failed: url=%s: %v", e.Kind, e.URL, e.Err)
	}
	return fmt.Sprintf("%s metadata request failed: status=%d url=%s response=%s", e.Kind, e.Status, e.URL, e.Body)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports a metadata response body that is not valid JSON.
type ParseError struct {
	Kind MetadataKind
	URL  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s metadata is malformed: url=%s: %v", e.Kind, e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InstallerError wraps a failure of the bundle installer capability.
type InstallerError struct {
	Op  string
	Err error
}

func (e *InstallerError) Error() string {
	return fmt.Sprintf("installer %s failed: %v", e.Op, e.Err)
}

func (e *InstallerError) Unwrap() error {
	return e.Err
}
