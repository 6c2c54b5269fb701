package config

const (
	// EnvPrefix is intentionally empty: every field names its variable in
	// full through its envconfig tag.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "EQUIPTRACK_DB_DSN"
	EnvDBHost = "EQUIPTRACK_DB_HOST"
	EnvDBUser = "EQUIPTRACK_DB_USER"
	EnvDBName = "EQUIPTRACK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
