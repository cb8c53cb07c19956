package config

const (
	defaultTimelineFile = "~/.local/share/geotag/timeline.json"
	defaultLogDir       = "~/.local/share/geotag/logs"
	defaultDatabasePath = "~/.local/share/geotag/gps.db"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"

	defaultToleranceMinutes       = 30.0
	defaultMaxFallbackHours       = 24.0
	defaultSecondaryRadiusMeters  = 2000.0
	defaultSecondaryTimeWindowHrs = 4.0

	defaultExactTimeToleranceMinutes     = 2.0
	defaultExactDistanceMeters           = 10.0
	defaultProximityTimeToleranceMinutes = 10.0
	defaultProximityDistanceMeters       = 50.0

	defaultBatchSize    = 25
	defaultBatchWorkers = 4
	defaultBatchPauseMs = 250
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TimelineFile: defaultTimelineFile,
			LogDir:       defaultLogDir,
			DatabasePath: defaultDatabasePath,
		},
		Interpolation: Interpolation{
			ToleranceMinutes:       defaultToleranceMinutes,
			MaxFallbackHours:       defaultMaxFallbackHours,
			SecondaryRadiusMeters:  defaultSecondaryRadiusMeters,
			SecondaryTimeWindowHrs: defaultSecondaryTimeWindowHrs,
		},
		Augmentation: Augmentation{
			ExactTimeToleranceMinutes:     defaultExactTimeToleranceMinutes,
			ExactDistanceMeters:           defaultExactDistanceMeters,
			ProximityTimeToleranceMinutes: defaultProximityTimeToleranceMinutes,
			ProximityDistanceMeters:       defaultProximityDistanceMeters,
			CreateBackup:                  true,
		},
		Batch: Batch{
			Size:    defaultBatchSize,
			Workers: defaultBatchWorkers,
			PauseMs: defaultBatchPauseMs,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
