package config

import (
	"os"
)

// Fixed responder settings. The service exposes no override for these.
const (
	ListenHost = "0.0.0.0"
	ListenPort = 8000
)

// NotSet is reported for environment variables that are absent.
const NotSet = "Not Set"

// JobVariables are the CI job variables reported by the diagnostic job.
var JobVariables = []string{
	"BUILD_NUMBER",
	"BUILD_ID",
	"BUILD_URL",
	"JOB_NAME",
	"JENKINS_URL",
	"WORKSPACE",
	"NODE_NAME",
	"BUILD_TAG",
	"CI",
	"GITHUB_RUN_ID",
	"GITHUB_WORKFLOW",
}

// SystemVariables are the host variables reported by the diagnostic job.
var SystemVariables = []string{"PATH", "HOME", "PWD"}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Getenv returns the value of key, or NotSet when it is absent.
// HOME falls back to the resolved home directory.
func Getenv(lookup LookupFunc, key string) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(key); ok {
		return v
	}
	if key == "HOME" {
		if home := HomeDir(); home != "" {
			return home
		}
	}
	return NotSet
}
