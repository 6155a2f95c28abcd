package config

// Environment variable names shared between Load, ensureDSN, and tests.
const (
	EnvPrefix = "MERCHANTPULSE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "MERCHANTPULSE_APP_ENV"
	EnvPort   = "MERCHANTPULSE_APP_PORT"

	EnvDBDSN  = "MERCHANTPULSE_DB_DSN"
	EnvDBHost = "MERCHANTPULSE_DB_HOST"
	EnvDBUser = "MERCHANTPULSE_DB_USER"
	EnvDBName = "MERCHANTPULSE_DB_NAME"

	EnvRedisURL = "MERCHANTPULSE_REDIS_URL"

	EnvGCPProjectID = "MERCHANTPULSE_GCP_PROJECT_ID"

	EnvPubSubIngestionSub = "MERCHANTPULSE_PUBSUB_INGESTION_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
