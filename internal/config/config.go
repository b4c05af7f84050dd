package config

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trimmer/internal/dirs"
)

// Keys bound to the root command's persistent flags. The flag name is the
// key with '_' replaced by '-'.
var persistentKeys = []string{
	"log_level",
	"log_file",
	"no_color",
	"ffmpeg",
	"ffprobe",
	"gpu",
	"metrics_file",
	"verbose",
}

// Settings is the resolved global configuration.
type Settings struct {
	LogLevel    string
	LogFile     string
	NoColor     bool
	FFmpeg      string
	FFprobe     string
	GPU         string
	MetricsFile string
	Verbose     bool
	ConfigFile  string // file the values were read from, if any
}

// Init wires Viper with the config path, env and flag bindings.
// Precedence is flag > TRIMMER_* env > config file > flag default.
// A missing config file is not an error; a malformed one is.
func Init(root *cobra.Command) error {
	if cfgDir, err := dirs.ConfigDir(); err == nil {
		viper.AddConfigPath(cfgDir)
	}
	viper.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	viper.SetEnvPrefix("TRIMMER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	for _, key := range persistentKeys {
		if f := root.PersistentFlags().Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

// Load returns the current settings.
func Load() Settings {
	return Settings{
		LogLevel:    viper.GetString("log_level"),
		LogFile:     viper.GetString("log_file"),
		NoColor:     viper.GetBool("no_color"),
		FFmpeg:      viper.GetString("ffmpeg"),
		FFprobe:     viper.GetString("ffprobe"),
		GPU:         viper.GetString("gpu"),
		MetricsFile: viper.GetString("metrics_file"),
		Verbose:     viper.GetBool("verbose"),
		ConfigFile:  viper.ConfigFileUsed(),
	}
}
