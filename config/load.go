package config

import (
	"github.com/asaskevich/govalidator"
	"github.com/fox-one/pkg/config"
)

// Load load config file, env vars with the LAGOON prefix override file
// values
func Load(cfgFile string, cfg *Config) error {
	config.AutomaticLoadEnv("LAGOON")
	if err := config.LoadYaml(cfgFile, cfg); err != nil {
		return err
	}

	defaultConfig(cfg)

	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		return err
	}

	return nil
}
