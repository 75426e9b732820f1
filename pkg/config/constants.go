package config

const (
	// EnvPrefix is intentionally empty; every field names its variable in full.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SEWSHOP_DB_DSN"
	EnvDBHost = "SEWSHOP_DB_HOST"
	EnvDBUser = "SEWSHOP_DB_USER"
	EnvDBName = "SEWSHOP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
