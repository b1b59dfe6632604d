package pkg

import envutil "github.com/projectdiscovery/utils/env"

// Defaults read from the environment. Command line flags override them.
var (
	WorkersEnv        = envutil.GetEnvOrDefault("NETSURVEY_WORKERS", "")
	TimeoutEnv        = envutil.GetEnvOrDefault("NETSURVEY_TIMEOUT", "")
	StrategyEnv       = envutil.GetEnvOrDefault("NETSURVEY_PING_STRATEGY", "hybrid")
	OutputBatchEnv    = envutil.GetEnvOrDefault("NETSURVEY_OUTPUT_BATCH_SIZE", "100")
	OutputFlushEnv    = envutil.GetEnvOrDefault("NETSURVEY_OUTPUT_FLUSH_INTERVAL", "1")
	DisableProcNetEnv = envutil.GetEnvOrDefault("NETSURVEY_DISABLE_PROC_NET", "false")
)
