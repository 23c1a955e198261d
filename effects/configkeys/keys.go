package configkeys

const (
	delimiter = "."

	ConfigPrefix = "config"

	ConfigEffectPrefix = ConfigPrefix + delimiter + "effect"

	ConfigEffectSchedulerPrefix = ConfigEffectPrefix + delimiter + "scheduler"

	ConfigEffectSchedulerHandlerPrefix     = ConfigEffectSchedulerPrefix + delimiter + "handler"
	ConfigEffectSchedulerHandlerBufferSize = ConfigEffectSchedulerHandlerPrefix + delimiter + "buffer_size"
	ConfigEffectSchedulerHandlerNumWorkers = ConfigEffectSchedulerHandlerPrefix + delimiter + "num_workers"

	ConfigEffectLogPrefix = ConfigEffectPrefix + delimiter + "log"

	ConfigEffectLogHandlerPrefix     = ConfigEffectLogPrefix + delimiter + "handler"
	ConfigEffectLogHandlerBufferSize = ConfigEffectLogHandlerPrefix + delimiter + "buffer_size"

	ConfigStorePrefix = ConfigPrefix + delimiter + "store"

	ConfigStoreStrictMode       = ConfigStorePrefix + delimiter + "strict_mode"
	ConfigStoreSourceBufferSize = ConfigStorePrefix + delimiter + "source" + delimiter + "buffer_size"
)
