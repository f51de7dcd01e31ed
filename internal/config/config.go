// Package config is used to load the configuration file
package config

import (
	"runtime"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type dump struct {
	Code         bool `mapstructure:"code" json:"code"`
	Annotations  bool `mapstructure:"annotations" json:"annotations"`
	StaticValues bool `mapstructure:"static-values" json:"static_values"`
	Debug        bool `mapstructure:"debug" json:"debug"`
}

type apk struct {
	Workers int `mapstructure:"workers" json:"workers"`
}

// Config is the configuration struct
type Config struct {
	Dump dump `mapstructure:"dump" json:"dump"`
	APK  apk  `mapstructure:"apk" json:"apk"`
}

func (c *Config) verify() error {
	if c.APK.Workers < 0 {
		return errors.Errorf("apk.workers must be >= 0, got %d", c.APK.Workers)
	}
	if c.APK.Workers == 0 {
		c.APK.Workers = runtime.NumCPU()
	}
	return nil
}

// LoadConfig loads the configuration from viper (file, env and bound flags)
func LoadConfig() (*Config, error) {
	return load(viper.GetViper())
}

func load(v *viper.Viper) (*Config, error) {
	c := &Config{}

	if err := v.Unmarshal(c, func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = false
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, errors.Wrap(err, "config: failed to unmarshal")
	}

	if err := c.verify(); err != nil {
		return nil, errors.Wrap(err, "config: failed to verify")
	}

	return c, nil
}
