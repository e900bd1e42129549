package entities

// ServiceStatus reports the state of one backing service.
type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

// HealthCheckResponse is the GET /healthCheck payload.
type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Uptime   string                   `json:"uptime"`
	Services map[string]ServiceStatus `json:"services"`
}
