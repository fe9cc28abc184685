package cmd

import (
	"fmt"
	"os"
	"path"

	"lagoon/config"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yiplee/structs"
)

var (
	cfgFile   string
	cfg       config.Config
	debugMode bool
)

var rootCmd = cobra.Command{
	Use:   "lagoon",
	Short: "isolated pool lending engine",
}

func init() {
	cobra.OnInitialize(initialize)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, default ~/.lagoon.yaml")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
}

// Execute runs the root command. Called once from main.
func Execute(ver string) {
	rootCmd.Version = ver
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var initialized bool

// initialize loads config and logging before any subcommand runs. Guarded
// because cobra fires it once per Execute and subcommands share the state.
func initialize() {
	if initialized {
		return
	}
	initialized = true

	if cfgFile == "" {
		if dir, err := homedir.Dir(); err == nil {
			filename := path.Join(dir, ".lagoon.yaml")
			if info, err := os.Stat(filename); err == nil && !info.IsDir() {
				cfgFile = filename
			}
		}
	}

	if err := config.Load(cfgFile, &cfg); err != nil {
		panic(err)
	}

	level := logrus.InfoLevel
	if debugMode {
		level = logrus.DebugLevel
	}

	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	structs.DefaultTagName = "json"

	if cfgFile != "" {
		logrus.Debugln("loaded config from", cfgFile)
	}
}
