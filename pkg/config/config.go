package config

// this holds the resolved configuration values from CLI
var (
	CacheDir     string  // directory for precomputed timeline files
	LogLevel     string  // sets the log level (zap log level values)
	LogFormat    string  // text vs json
	LogFilter    string  // zapfilter rules, e.g. "debug:processing.* info:*"
	FPS          int     // frames per second of the replay timeline
	GapThreshold string  // max sample gap bridged by interpolation (duration)
	StallWindow  int     // ticks of flat distance before a driver is flagged OUT
	Refresh      bool    // ignore cache hits and recompute
	Speed        float64 // initial playback speed multiplier
	Workers      int     // max concurrent driver normalizations (0: NumCPU)
)
