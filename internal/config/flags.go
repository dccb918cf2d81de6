package config

import "flag"

var (
	flagConfig        = flag.String("config", "", "Path to config file")
	flagDebug         = flag.Bool("debug", false, "Enable debug logging")
	flagWorkers       = flag.Int("workers", 0, "Bounce worker count (0 = one per CPU)")
	flagSeed          = flag.Int64("seed", 0, "Random seed for jitter and penumbra sampling")
	flagDeterministic = flag.Bool("deterministic", false, "Sort bounce lights by face number")
	flagNoBounce      = flag.Bool("nobounce", false, "Disable bounce lighting")
	flagNoVisApprox   = flag.Bool("novisapprox", false, "Disable bounce visibility bounds")
	flagSurfDump      = flag.String("surflight-dump", "", "Write generated surface lights to a map file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWorkers > 0 {
		cfg.Compile.Workers = *flagWorkers
	}
	if *flagSeed != 0 {
		cfg.Compile.Seed = *flagSeed
	}
	if *flagDeterministic {
		cfg.Compile.Deterministic = true
	}
	if *flagNoBounce {
		cfg.Bounce.Enabled = false
	}
	if *flagNoVisApprox {
		cfg.Bounce.VisApprox = false
	}
	if *flagSurfDump != "" {
		cfg.Surface.DumpFile = *flagSurfDump
	}
}
