package config

// EnvPrefix is handed to envconfig; explicit envconfig tags take precedence.
const EnvPrefix = "sxo6"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SXO6_DB_DSN"
	EnvDBHost = "SXO6_DB_HOST"
	EnvDBUser = "SXO6_DB_USER"
	EnvDBName = "SXO6_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
