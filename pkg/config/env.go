package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Environment variables overriding the settings file.
const (
	EnvHeadless  = "FUNCTEST_HEADLESS"
	EnvBrowsers  = "FUNCTEST_BROWSERS"
	EnvTimeout   = "FUNCTEST_TIMEOUT"
	EnvLocalPort = "FUNCTEST_LOCAL_PORT"
	EnvLogDir    = "FUNCTEST_LOG_DIR"
)

func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvHeadless); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvHeadless, v, err)
		}
		s.Headless = b
	}

	if v, ok := get(EnvBrowsers); ok {
		var browsers []string
		for _, name := range strings.Split(v, ",") {
			if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
				browsers = append(browsers, name)
			}
		}
		s.Browsers = browsers
	}

	if v, ok := get(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		s.Timeout = d
	}

	if v, ok := get(EnvLocalPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvLocalPort, v, err)
		}
		s.LocalPort = port
	}

	if v, ok := get(EnvLogDir); ok {
		s.LogDir = v
	}

	return nil
}
