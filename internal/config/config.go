package config

const (
	DefaultTimeZone = "Europe/Madrid"

	// Cron schedules; overridable per service in services.yaml.
	DefaultReconcileSchedule     = "0 3 * * *"
	DefaultLicenseExpirySchedule = "30 3 * * *"
	LicenseExpiryWarningDays     = 60

	// Roster upload limits.
	UploadMaxBytes  = 16 << 20
	UploadBatchSize = 500

	// Gateway and area service ports.
	GatewayPort  = ":8080"
	ClientsPort  = ":6151"
	PaymentsPort = ":6152"
	ArmoryPort   = ":6153"
)
