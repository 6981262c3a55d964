package web2pdf

import "time"

// converterConfig holds internal configuration for a Converter.
type converterConfig struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     string
	proxyServer  string
	autoDownload bool
}

func defaultConfig() converterConfig {
	return converterConfig{
		timeout:  30 * time.Second,
		headless: "new",
	}
}

// Option configures a [Converter].
type Option func(*converterConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *converterConfig) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration for a single conversion,
// including navigation and network waits. Defaults to 30 seconds.
// A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *converterConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *converterConfig) {
		c.noSandbox = true
	}
}

// WithProxy routes all of the browser's traffic through the proxy server
// at the given URI (for example "http://proxy.example:3128" or
// "socks5://127.0.0.1:1080"). Proxy credentials are not supported.
func WithProxy(uri string) Option {
	return func(c *converterConfig) {
		c.proxyServer = uri
	}
}

// WithAutoDownload makes the Converter download a compatible Chromium
// binary when no Chrome executable is installed. The binary is cached
// under the user cache directory. Ignored if WithChromePath is set.
func WithAutoDownload() Option {
	return func(c *converterConfig) {
		c.autoDownload = true
	}
}

// WithHeadful runs the browser with a visible window, for debugging.
func WithHeadful() Option {
	return func(c *converterConfig) {
		c.headless = ""
	}
}
