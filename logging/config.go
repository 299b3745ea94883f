package logging

// Config contains the configurable items for this package.
type Config struct {
	Environment string `long:"env" choice:"dev" choice:"prod" description:"logger preset, dev is human readable, prod is json"`
	// File is an optional path the logger also writes to. The file is rotated
	// according to the settings below.
	File       string `long:"file" description:"optional log file, rotated"`
	MaxSizeMB  int    `long:"max-size-mb" description:"size of a log file before it gets rotated"`
	MaxBackups int    `long:"max-backups" description:"number of rotated files kept"`
	MaxAgeDays int    `long:"max-age-days" description:"days a rotated file is kept"`
}

// NewDefaultConfig creates an instance of the package-specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Environment: "dev",
		MaxSizeMB:   100,
		MaxBackups:  3,
		MaxAgeDays:  28,
	}
}
