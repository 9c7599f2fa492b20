package config

type MetricsConfig struct {
	// ListeningAddress of the Prometheus endpoint. Metrics are disabled if empty.
	ListeningAddress string `yaml:"listening_address"`
}
