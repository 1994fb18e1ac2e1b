package config

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecurityWebhook                      // Payment webhook key required
	SecurityAccess                       // User access token required
)

// EndpointSecurityConfig maps "METHOD path-template" (HTTP) or the full
// method name (gRPC) to its required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Probes
	"GET /healthz": SecurityPublic,
	"GET /metrics": SecurityPublic,

	// Catalog and featured listings are browsable without signing in
	"GET /api/v1/catalog/products":  SecurityPublic,
	"GET /api/v1/listings/featured": SecurityPublic,

	// Payment confirmation source
	"POST /api/v1/payments/confirmations": SecurityWebhook,

	// Wallet
	"GET /api/v1/wallet/balance":      SecurityAccess,
	"GET /api/v1/wallet/transactions": SecurityAccess,
	"GET /api/v1/wallet/spending":     SecurityAccess,
	"POST /api/v1/wallet/init":        SecurityAccess,

	// Purchases
	"POST /api/v1/listings":             SecurityAccess,
	"POST /api/v1/unlocks":              SecurityAccess,
	"GET /api/v1/unlocks/{candidateID}": SecurityAccess,
	"POST /api/v1/verifications":        SecurityAccess,
	"POST /api/v1/profile/featured":     SecurityAccess,
	"GET /api/v1/quota/applications":    SecurityAccess,
	"GET /api/v1/notifications":         SecurityAccess,

	// gRPC probes
	"/grpc.health.v1.Health/Check": SecurityPublic,
	"/grpc.health.v1.Health/List":  SecurityPublic,
}

// GetSecurityLevel returns the security level for a given route or method
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
