package config

import "github.com/microcosm-cc/bluemonday"

type BackendConfig struct {
	ListenPort             string
	FrontendEndpoint       string
	PublicURL              string
	CallbackPath           string
	SecureCookies          bool
	HTMLSanitizationPolicy *bluemonday.Policy
}

// Backend returns the HTTP-facing part of the configuration.
func (c *Config) Backend() BackendConfig {
	return BackendConfig{
		ListenPort:             c.ListenPort,
		FrontendEndpoint:       c.FrontendEndpoint,
		PublicURL:              c.PublicURL,
		CallbackPath:           c.CallbackPath,
		SecureCookies:          c.SecureCookies,
		HTMLSanitizationPolicy: bluemonday.StrictPolicy(),
	}
}
