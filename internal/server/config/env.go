package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mindbloging/mindbloging/internal/timex"
)

// EnvPrefix is prepended to every variable name in the Config env tags.
const EnvPrefix = "BLOG_"

// GoogleClientIDEnv is the variable that sets Config.GoogleClientID.
const GoogleClientIDEnv = EnvPrefix + "GOOGLE_CLIENT_ID"

// parseEnv overlays BLOG_* environment variables on config. Unset variables
// leave the current value alone. Durations accept the "7d" form.
func parseEnv(config *Config) error {
	opts := env.Options{
		Prefix: EnvPrefix,
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(time.Duration(0)): func(v string) (interface{}, error) {
				return timex.ParseDuration(v)
			},
		},
	}
	if err := env.ParseWithOptions(config, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
