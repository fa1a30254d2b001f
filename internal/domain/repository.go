package domain

import "context"

// ShopAPI defines the operations the shopping backend offers to its callers
type ShopAPI interface {
	Identify(ctx context.Context, image []byte, filename, mimeType string) (*IdentifyResult, error)
	FetchOffers(ctx context.Context, query string, opts OffersOptions) (*OffersResult, error)
}

// MetaAPI defines the backend's liveness and version endpoints
type MetaAPI interface {
	Health(ctx context.Context) (*HealthStatus, error)
	Version(ctx context.Context) (*VersionInfo, error)
}
