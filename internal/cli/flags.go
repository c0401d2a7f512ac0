package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"livebundle/internal/core"
)

func addStorageFlags(cmd *cobra.Command) {
	defaults := core.DefaultPhaseTimeouts()
	flags := cmd.PersistentFlags()
	flags.String("storage-url", "", "Base URL of the bundle store")
	flags.String("storage-suffix", "", "Suffix appended to every store URL, such as an access token query")
	flags.String("platform", "android", "Bundle platform (android, ios)")
	flags.String("data-dir", "", "Directory holding installed bundles and installer state")
	flags.String("exit-policy", "on-success", "When to request an application exit (on-success, always)")
	flags.Duration("metadata-timeout", defaults.Metadata, "Metadata fetch timeout")
	flags.Duration("download-timeout", defaults.Download, "Bundle download timeout")
	flags.Duration("install-timeout", defaults.Install, "Install, launch and reset timeout")
	flags.Bool("asset-platform-suffix", true, "Name remote assets name.platform.type")
	flags.String("metrics-textfile", "", "Write flow metrics to this Prometheus textfile")

	_ = viper.BindPFlag("storage_url", flags.Lookup("storage-url"))
	_ = viper.BindPFlag("storage_suffix", flags.Lookup("storage-suffix"))
	_ = viper.BindPFlag("platform", flags.Lookup("platform"))
	_ = viper.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = viper.BindPFlag("exit_policy", flags.Lookup("exit-policy"))
	_ = viper.BindPFlag("metadata_timeout", flags.Lookup("metadata-timeout"))
	_ = viper.BindPFlag("download_timeout", flags.Lookup("download-timeout"))
	_ = viper.BindPFlag("install_timeout", flags.Lookup("install-timeout"))
	_ = viper.BindPFlag("asset_platform_suffix", flags.Lookup("asset-platform-suffix"))
	_ = viper.BindPFlag("metrics_textfile", flags.Lookup("metrics-textfile"))
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if !viper.IsSet(key) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.InheritedFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
