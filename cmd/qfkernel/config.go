package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configFileName = "qfkernel"
	configFileType = "yaml"

	cfgKeyTolerance = "tolerance"
	cfgKeyWorkers   = "workers"
	cfgKeyDevice    = "device"
	cfgKeyFormat    = "format"

	defaultTolerance = 1e-12
	defaultWorkers   = 1
	defaultFormat    = "text"
)

// loadConfig reads qfkernel.yaml from path, or from the working directory
// when path is empty. A missing file is not an error. Environment variables
// prefixed QFKERNEL_ override the file.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyTolerance, defaultTolerance)
	v.SetDefault(cfgKeyWorkers, defaultWorkers)
	v.SetDefault(cfgKeyDevice, "")
	v.SetDefault(cfgKeyFormat, defaultFormat)
	v.SetEnvPrefix("QFKERNEL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(filepath.Clean(path))
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}
