package cli

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"livebundle/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "LIVEBUNDLE"

type RootConfig struct {
	ConfigFile string
	LogLevel   string
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:           "livebundle",
		Short:         "Live update client for remote application bundles",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	addStorageFlags(cmd)

	cmd.AddCommand(newInstallCommand())
	cmd.AddCommand(newSessionCommand())
	cmd.AddCommand(newOpenCommand())
	cmd.AddCommand(newScanCommand())
	cmd.AddCommand(newResetCommand())
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newMetadataCommand())
	cmd.AddCommand(newAssetCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("livebundle")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/livebundle")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.DefaultContextLogger = &log.Logger
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// exitCodeForError maps flow failures first, then falls back to the error
// code carried by errbuilder errors.
func exitCodeForError(err error) int {
	var fetchErr *types.FetchError
	var parseErr *types.ParseError
	var installerErr *types.InstallerError
	switch {
	case errors.Is(err, types.ErrNoBundleForPlatform),
		errors.Is(err, types.ErrNoBundleForFlavor),
		errors.Is(err, types.ErrFlavorRequired):
		return 4
	case errors.As(err, &fetchErr):
		if fetchErr.Status == http.StatusNotFound {
			return 5
		}
		return 6
	case errors.As(err, &parseErr):
		return 6
	case errors.As(err, &installerErr):
		return 7
	case errors.Is(err, types.ErrFlowInFlight), errors.Is(err, types.ErrInvalidTransition):
		return 3
	}

	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodeFailedPrecondition, errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeNotFound:
		return 5
	case errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
