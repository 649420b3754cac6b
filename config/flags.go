package config

import "github.com/spf13/pflag"

// ParseFlags layers command-line overrides onto base. --config, if given,
// replaces base entirely with a freshly loaded file before the remaining
// flags (the fields most often changed per invocation: the two media
// paths, --log-file, --text-file, and --hz) are applied on top.
func ParseFlags(args []string, base Config) (Config, error) {
	fs := pflag.NewFlagSet("timewarp", pflag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	media := fs.StringArray("media", base.Media, "source media paths (repeat twice, or omit with --text-file)")
	logFile := fs.String("log-file", base.LogFile, "path the computed path is written to")
	textFile := fs.String("text-file", base.TextFile, "path to a previously computed path, bypassing alignment")
	hz := fs.Int("hz", base.DefaultHz, "target resample rate")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := base
	if *configPath != "" {
		loaded, err := Load(*configPath)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	if fs.Changed("media") {
		cfg.Media = *media
	}
	if fs.Changed("log-file") {
		cfg.LogFile = *logFile
	}
	if fs.Changed("text-file") {
		cfg.TextFile = *textFile
	}
	if fs.Changed("hz") {
		cfg.DefaultHz = *hz
	}
	return cfg, nil
}
