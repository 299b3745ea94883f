package config

import (
	"os"
	"path/filepath"
)

const EnvHome = "REFERRAL_HOME"

// Empty is the root of the command line parser, every setting lives on a
// subcommand.
type Empty struct{}

type HomeFlag struct {
	Home string `long:"home" description:"Path to the home directory of the node, defaults to $REFERRAL_HOME or ~/.referral"`
}

// HomePath returns the configured home, falling back on the environment
// and then the user home directory.
func (f HomeFlag) HomePath() string {
	if f.Home != "" {
		return f.Home
	}
	if home := os.Getenv(EnvHome); home != "" {
		return home
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return ".referral"
	}
	return filepath.Join(dir, ".referral")
}
