package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "CRAFTWORKS_APP_ENV"
	EnvPort   = "CRAFTWORKS_APP_PORT"

	EnvDBDSN  = "CRAFTWORKS_DB_DSN"
	EnvDBHost = "CRAFTWORKS_DB_HOST"
	EnvDBUser = "CRAFTWORKS_DB_USER"
	EnvDBName = "CRAFTWORKS_DB_NAME"

	EnvRedisURL     = "CRAFTWORKS_REDIS_URL"
	EnvJWTSecret    = "CRAFTWORKS_JWT_SECRET"
	EnvGCPProjectID = "CRAFTWORKS_GCP_PROJECT_ID"
	EnvPubSubSub    = "CRAFTWORKS_PUBSUB_NOTIFICATION_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
