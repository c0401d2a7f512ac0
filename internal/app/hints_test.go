package app

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"livebundle/internal/types"
)

func TestFailureHints(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"platform", fmt.Errorf("%w: pkg", types.ErrNoBundleForPlatform), "no android bundle"},
		{"flavor required", types.ErrFlavorRequired, "--flavor"},
		{"flavor missing", types.ErrNoBundleForFlavor, "other flavor"},
		{"not found", &types.FetchError{Kind: types.MetadataKindPackage, URL: "u", Status: 404}, "no packages found at u"},
		{"forbidden", &types.FetchError{Status: 403}, "storage_suffix"},
		{"unreachable", &types.FetchError{Err: errors.New("dial")}, "unreachable"},
		{"parse", &types.ParseError{URL: "u", Err: errors.New("bad")}, "u does not serve JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hints := FailureHints(tt.err, types.PlatformAndroid)
			if assert.Len(t, hints, 1) {
				assert.Contains(t, hints[0], tt.contains)
			}
		})
	}

	assert.Empty(t, FailureHints(nil, types.PlatformAndroid))
	assert.Empty(t, FailureHints(errors.New("other"), types.PlatformAndroid))
	assert.Empty(t, FailureHints(&types.FetchError{Status: 500}, types.PlatformAndroid))
}

func TestEmitHints(t *testing.T) {
	var buf bytes.Buffer
	EmitHints(&buf, []string{"hint: a", "hint: b"})
	assert.Equal(t, "hint: a\nhint: b\n", buf.String())
}
