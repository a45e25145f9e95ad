package constant

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	AllowlistKeyPrefix = "allowlist"
	ConfirmedKeyPrefix = "confirmed"
)
