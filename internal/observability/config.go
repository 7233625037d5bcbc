package observability

import (
	"resumatch/internal/config"
)

// Settings is the resolved observability setup for one process
type Settings struct {
	ServiceName    string
	ServiceVersion string
	Instance       string
	Enabled        bool
	Tracing        bool
	Console        bool
	PrettyPrint    bool
	SampleRate     float64
	Prometheus     PrometheusConfig
}

// SettingsFromConfig derives Settings from the loaded config. A nil config
// gives console output with the default service name.
func SettingsFromConfig(cfg *config.Config, version string) Settings {
	if cfg == nil {
		return Settings{
			ServiceName:    "resumatch",
			ServiceVersion: version,
			Instance:       "resumatch-1",
			Enabled:        true,
			Tracing:        true,
			Console:        true,
			PrettyPrint:    true,
			SampleRate:     1.0,
			Prometheus:     GetPrometheusConfig(nil),
		}
	}

	obs := cfg.Observability
	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}
	sampleRate := obs.SampleRate
	if obs.Tracing.SampleRate > 0 {
		sampleRate = obs.Tracing.SampleRate
	}
	instance := obs.ServiceInstance
	if instance == "" {
		instance = "resumatch-1"
	}

	return Settings{
		ServiceName:    obs.ServiceName,
		ServiceVersion: serviceVersion,
		Instance:       instance,
		Enabled:        obs.Enabled,
		Tracing:        obs.Tracing.Enabled,
		Console:        obs.Console.Enabled,
		PrettyPrint:    obs.Console.PrettyPrint,
		SampleRate:     sampleRate,
		Prometheus:     GetPrometheusConfig(cfg),
	}
}
