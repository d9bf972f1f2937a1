package main

import "os"

// resolveConfig implements the flag > environment variable > default
// precedence for any (flag, env var, default) triple.
func resolveConfig(flagValue, envVar, def string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return def
}

const (
	anchorsEnvVar = "WEBPKI_ANCHORS"
	crlsEnvVar    = "WEBPKI_CRLS"

	defaultAnchorsPath = "./anchors.pem"
	defaultCRLsPath    = "./crls.pem"
)
