package domain

// HealthStatus is the backend liveness answer
type HealthStatus struct {
	OK bool `json:"ok"`
}

// VersionInfo identifies the deployed backend build
type VersionInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
}
