package core

import (
	"strings"

	"livebundle/internal/types"
)

const sessionPayloadPrefix = "s:"

// ParseScanPayload reads a scanned QR code. A payload prefixed with "s:"
// names a live session, anything else a package.
func ParseScanPayload(data string) types.Input {
	data = strings.TrimSpace(data)
	if sessionID, ok := strings.CutPrefix(data, sessionPayloadPrefix); ok {
		return types.Input{SessionID: sessionID}
	}
	return types.Input{PackageID: data}
}
