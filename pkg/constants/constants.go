package constants

const (
	AppName = "boppa"

	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "BOPPA"

	// SubjectPrefix is prepended to every NATS subject the service publishes.
	SubjectPrefix = "boppa"
)
