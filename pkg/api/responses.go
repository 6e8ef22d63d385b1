package api

// GenerateResponse maps provider id to generated text or an inline
// "Error: ..." string. Providers that were skipped are absent.
type GenerateResponse struct {
	Results map[string]string `json:"results"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ProviderInfo describes a registered provider. It never carries secrets.
type ProviderInfo struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Credential  string `json:"credential"`
	HasFallback bool   `json:"has_fallback"`
}

type ProviderList struct {
	Object string         `json:"object"`
	Data   []ProviderInfo `json:"data"`
}
