package main

import (
	"fmt"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/warp/naturalization-engine/store/sqlite"
)

var log = logrus.New()

// app carries what every subcommand needs after configuration is loaded.
type app struct {
	cfgFile string
	v       *viper.Viper
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "natz",
		Short: "Track naturalization eligibility from your green card history.",
		Long: `natz keeps your profile and trips abroad in a local database and tells you
whether you meet the naturalization requirements on a given date, and if not,
the earliest date you could file.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.natz.yaml)")
	rootCmd.PersistentFlags().String("db", "natz.db", "SQLite database path")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")

	rootCmd.AddCommand(
		newServeCmd(a),
		newEvaluateCmd(a),
		newImportCmd(a),
		newExportCmd(a),
	)
	return rootCmd
}

// initConfig reads in config file and ENV variables if set.
func (a *app) initConfig(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return err
		}
		a.v.AddConfigPath(home)
		a.v.SetConfigName(".natz")
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix("natz")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	} else {
		log.WithField("file", filepath.Clean(a.v.ConfigFileUsed())).Debug("using config file")
	}

	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	log.SetOutput(cmd.ErrOrStderr())
	return setLogLevel(a.v.GetString("loglevel"))
}

func (a *app) openStore() (*sqlite.Store, error) {
	path := a.v.GetString("db")
	store, err := sqlite.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database %s: %w", path, err)
	}
	return store, nil
}

func setLogLevel(level string) error {
	// We are not using logrus' trace and panic levels
	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warning", "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	case "fatal":
		log.SetLevel(logrus.FatalLevel)
	default:
		return fmt.Errorf("bad log level %q", level)
	}
	return nil
}
