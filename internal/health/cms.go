package health

import (
	"context"
)

// Pinger is the subset of the content-store client needed for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CMSChecker implements health checking for the headless content store.
type CMSChecker struct {
	client Pinger
}

// NewCMSChecker creates a new content-store health checker.
func NewCMSChecker(client Pinger) *CMSChecker {
	return &CMSChecker{
		client: client,
	}
}

// HealthCheck verifies the content store answers a lightweight request.
func (c *CMSChecker) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx)
}
