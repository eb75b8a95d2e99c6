package health

import "context"

// HealthPinger is implemented by dependencies that expose a liveness check.
// HealthPing must return nil when the dependency is healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
