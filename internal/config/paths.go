package config

import (
	"github.com/mitchellh/go-homedir"
)

var homeDir string

func init() {
	homeDir, _ = homedir.Dir()
}

// HomeDir returns the current user's home directory, or "" if it cannot be resolved.
func HomeDir() string {
	return homeDir
}
