package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"livebundle/internal/adapters"
	"livebundle/internal/app"
	"livebundle/internal/core"
	"livebundle/internal/policies"
	"livebundle/internal/shared"
	"livebundle/internal/types"
)

// commandEnv is the service for one command plus what must happen after it.
type commandEnv struct {
	Service app.Service
	Exit    *adapters.ExitSignal
	metrics *adapters.PromFlowMetrics
	path    string
}

func loadAppConfig() (app.Config, error) {
	platform, err := parsePlatform(viper.GetString("platform"))
	if err != nil {
		return app.Config{}, err
	}
	exitPolicy, err := policies.ParseExitPolicyMode(viper.GetString("exit_policy"))
	if err != nil {
		return app.Config{}, err
	}
	dataDir := shared.ExpandHome(viper.GetString("data_dir"))
	if dataDir == "" {
		dataDir = shared.DefaultDataDir()
	}
	timeouts := core.DefaultPhaseTimeouts()
	if value := viper.GetDuration("metadata_timeout"); value > 0 {
		timeouts.Metadata = value
	}
	if value := viper.GetDuration("download_timeout"); value > 0 {
		timeouts.Download = value
	}
	if value := viper.GetDuration("install_timeout"); value > 0 {
		timeouts.Install = value
	}
	assetPlatformSuffix := true
	if viper.IsSet("asset_platform_suffix") {
		assetPlatformSuffix = viper.GetBool("asset_platform_suffix")
	}
	return app.Config{
		Storage: types.StorageLocation{
			BaseURL: strings.TrimSpace(viper.GetString("storage_url")),
			Suffix:  viper.GetString("storage_suffix"),
		},
		Platform:            platform,
		DataDir:             dataDir,
		ExitPolicy:          exitPolicy,
		Timeouts:            timeouts,
		AssetPlatformSuffix: assetPlatformSuffix,
	}, nil
}

func parsePlatform(value string) (types.Platform, error) {
	switch types.Platform(strings.ToLower(strings.TrimSpace(value))) {
	case "", types.PlatformAndroid:
		return types.PlatformAndroid, nil
	case types.PlatformIOS:
		return types.PlatformIOS, nil
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unknown platform: %s", value))
}

func parseFlavor(value string) (types.Flavor, error) {
	switch types.Flavor(strings.ToLower(strings.TrimSpace(value))) {
	case types.FlavorNone:
		return types.FlavorNone, nil
	case types.FlavorDev:
		return types.FlavorDev, nil
	case types.FlavorProd:
		return types.FlavorProd, nil
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unknown bundle flavor: %s", value))
}

// newCommandEnv builds the service and runs application startup: an installed
// bundle registers the remote asset source.
func newCommandEnv(ctx context.Context, requireStorage bool) (*commandEnv, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, err
	}
	if requireStorage && cfg.Storage.BaseURL == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("storage url is required (--storage-url or LIVEBUNDLE_STORAGE_URL)")
	}
	service := app.NewService(cfg)
	exit := adapters.NewExitSignal()
	service.Lifecycle = exit
	rt := &commandEnv{Service: service, Exit: exit, path: strings.TrimSpace(viper.GetString("metrics_textfile"))}
	if rt.path != "" {
		rt.metrics = adapters.NewPromFlowMetrics(adapters.MetricsNamespace)
		rt.Service.Metrics = rt.metrics
	}
	if _, err := rt.Service.Initialize(ctx); err != nil {
		return nil, err
	}
	return rt, nil
}

// Close writes the metrics textfile when one is configured.
func (r *commandEnv) Close() {
	if r.metrics == nil {
		return
	}
	if err := r.metrics.WriteTextfile(r.path); err != nil {
		log.Warn().Err(err).Str("path", r.path).Msg("metrics textfile not written")
	}
}

func transitionPrinter(cmd *cobra.Command) func(types.Transition) {
	return func(transition types.Transition) {
		fmt.Fprintf(cmd.ErrOrStderr(), "-> %s\n", transition.To)
	}
}
