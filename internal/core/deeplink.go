package core

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"livebundle/internal/types"
)

const DefaultDeepLinkScheme = "livebundle"

const (
	deepLinkHostMenu     = "menu"
	deepLinkHostPackages = "packages"
	deepLinkHostSessions = "sessions"
)

type DeepLinkRouter struct {
	Scheme string
}

func NewDeepLinkRouter() DeepLinkRouter {
	return DeepLinkRouter{Scheme: DefaultDeepLinkScheme}
}

// Parse maps a deep link to an intent. Links it does not recognize yield
// IntentNone.
func (r DeepLinkRouter) Parse(raw string) types.Intent {
	scheme := r.Scheme
	if scheme == "" {
		scheme = DefaultDeepLinkScheme
	}
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		log.Debug().Err(err).Str("url", raw).Msg("ignoring malformed deep link")
		return types.Intent{}
	}
	if !strings.EqualFold(parsed.Scheme, scheme) {
		log.Debug().Str("url", raw).Msg("ignoring deep link with foreign scheme")
		return types.Intent{}
	}
	host := strings.ToLower(parsed.Host)
	if parsed.Path != "" && parsed.Path != "/" {
		log.Debug().Str("url", raw).Msg("ignoring deep link with path")
		return types.Intent{}
	}
	switch host {
	case deepLinkHostMenu:
		if parsed.RawQuery != "" {
			return types.Intent{}
		}
		return types.Intent{Kind: types.IntentOpenMenu}
	case deepLinkHostPackages, deepLinkHostSessions:
		id := strings.TrimSpace(parsed.Query().Get("id"))
		if id == "" {
			log.Debug().Str("url", raw).Msg("ignoring deep link without id")
			return types.Intent{}
		}
		if host == deepLinkHostPackages {
			return types.Intent{Kind: types.IntentOpenPackage, ID: id}
		}
		return types.Intent{Kind: types.IntentOpenSession, ID: id}
	}
	log.Debug().Str("url", raw).Msg("ignoring unknown deep link")
	return types.Intent{}
}

// IntentInput converts an intent into the input of a flow. Intents that do
// not name a package or session give an empty input.
func IntentInput(intent types.Intent) types.Input {
	switch intent.Kind {
	case types.IntentOpenPackage:
		return types.Input{PackageID: intent.ID}
	case types.IntentOpenSession:
		return types.Input{SessionID: intent.ID}
	}
	return types.Input{}
}
