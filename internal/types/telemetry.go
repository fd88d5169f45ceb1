package types

// Metric names shared by the Prometheus and CloudWatch collectors.
const (
	MetricAPILatency         = "APILatency"
	MetricAPIRequests        = "APIRequests"
	MetricActivityEvaluation = "ActivityEvaluation"
	MetricExternalAPIFailure = "ExternalAPIFailure"

	DimEndpoint = "Endpoint"
	DimMethod   = "Method"
	DimStatus   = "StatusClass"
	DimActivity = "Activity"
	DimLabel    = "Label"
	DimProvider = "Provider"

	// MetricNamespace is the default CloudWatch namespace.
	MetricNamespace = "Trailcast"
)

// Upstream provider names used in logs and metric dimensions.
const (
	ProviderForecast   = "open-meteo-forecast"
	ProviderAirQuality = "open-meteo-air-quality"
	ProviderMarine     = "open-meteo-marine"
)
