package config

const (
	EnvPrefix = "dishpatch"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared with tests and deploy tooling.
const (
	EnvAppEnv         = "DISHPATCH_APP_ENV"
	EnvPort           = "DISHPATCH_APP_PORT"
	EnvLogLevel       = "DISHPATCH_LOG_LEVEL"
	EnvRedisURL       = "DISHPATCH_REDIS_URL"
	EnvOrderTaxRate   = "DISHPATCH_ORDER_TAX_RATE"
	EnvCatalogBaseURL = "DISHPATCH_CATALOG_BASE_URL"
	EnvOrdersBaseURL  = "DISHPATCH_ORDERS_BASE_URL"
)
