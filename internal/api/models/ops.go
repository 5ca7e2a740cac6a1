package models

// Health represents the health status of the service and its providers.
type Health struct {
	Status    HealthStatus           `json:"status"`
	Time      Timestamp              `json:"time"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Providers []ProviderStatus       `json:"providers,omitempty"`
}

// ProviderStatus represents the status of an external provider.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	CircuitState  string       `json:"circuitState"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
}
