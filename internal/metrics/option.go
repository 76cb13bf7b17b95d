package metrics

// Provider selects a metrics backend.
type Provider string

const (
	PrometheusProvider Provider = "prometheus"
	OtelCollector      Provider = "otelCollector"
)

// ProviderCfg configures one metrics backend.
type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// Config is the aggregate metrics configuration.
type Config struct {
	ServiceName string
	Provider    []ProviderCfg
}

// OptionFn mutates the metrics Config.
type OptionFn func(config Config) Config

// WithServiceName sets the service name reported on every metric.
func WithServiceName(serviceName string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = serviceName
		return config
	}
}

// WithProviderConfig adds a backend. Multiple backends report in parallel.
func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(config Config) Config {
		config.Provider = append(config.Provider, provider)
		return config
	}
}

// PromServerConfig configures the scrape endpoint server.
type PromServerConfig struct {
	port string
}

// PromOptionFn mutates the scrape server config.
type PromOptionFn func(config PromServerConfig) PromServerConfig

// WithPort overrides the scrape endpoint port.
func WithPort(port string) PromOptionFn {
	return func(config PromServerConfig) PromServerConfig {
		config.port = port
		return config
	}
}
