package app

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kiosk404/roundtable/pkg/logger"
)

const configFlagName = "config"

var configFile string

// addConfigFlag registers the --config flag and wires viper to the
// application's config file and environment variables.
func addConfigFlag(basename string, fs *pflag.FlagSet) {
	fs.StringVarP(&configFile, configFlagName, "c", "",
		"Read configuration from the specified YAML file.")

	viper.SetEnvPrefix(strings.ReplaceAll(strings.ToUpper(basename), "-", "_"))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	cobraOnInitialize(basename)
}

func cobraOnInitialize(basename string) {
	if configFile == "" {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.SetConfigName(basename)
	}
}

// applyConfigToOptions reads the config file (when one is present) into
// the options struct and watches it for changes.
func applyConfigToOptions(opts CliOptions) error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		// A missing default config file is fine; anything else is not.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || configFile != "" {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		logger.Info("[App] using config file %q", viper.ConfigFileUsed())
		viper.WatchConfig()
		viper.OnConfigChange(func(e fsnotify.Event) {
			logger.Info("[App] config file changed: %s (restart to apply)", e.Name)
		})
	}

	return viper.Unmarshal(opts)
}
