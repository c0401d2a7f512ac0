package adapters

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"livebundle/internal/types"
)

func TestAssetRegistry_DefaultsToPackagedURI(t *testing.T) {
	registry := NewAssetRegistry()
	asset := types.Asset{Hash: "abc", Name: "logo", Type: "png", PackagedURI: "asset:/logo.png"}

	assert.False(t, registry.Active())
	assert.Equal(t, "asset:/logo.png", registry.Resolve(asset))
}

func TestAssetRegistry_SetAndClear(t *testing.T) {
	registry := NewAssetRegistry()
	asset := types.Asset{Hash: "abc", Name: "logo", Type: "png", PackagedURI: "asset:/logo.png"}

	registry.Set(func(a types.Asset) string { return "https://cdn.test/" + a.Hash })
	assert.True(t, registry.Active())
	assert.Equal(t, "https://cdn.test/abc", registry.Resolve(asset))

	registry.Set(nil)
	assert.False(t, registry.Active())
	assert.Equal(t, "asset:/logo.png", registry.Resolve(asset))
}

func TestAssetRegistry_ConcurrentSwap(t *testing.T) {
	registry := NewAssetRegistry()
	asset := types.Asset{PackagedURI: "packaged"}
	remote := func(types.Asset) string { return "remote" }

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				registry.Set(remote)
				registry.Set(nil)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got := registry.Resolve(asset)
				if got != "packaged" && got != "remote" {
					t.Errorf("unexpected uri %q", got)
				}
			}
		}()
	}
	wg.Wait()
}

func TestDefaultAssetRegistry_IsShared(t *testing.T) {
	assert.Same(t, DefaultAssetRegistry(), DefaultAssetRegistry())
}
