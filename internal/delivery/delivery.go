// Package delivery defines the contract shared by inbound servers.
package delivery

import "context"

// Delivery is a long-running inbound server started by the application.
type Delivery interface {
	// Serve blocks until the server stops.
	Serve(ctx context.Context) error
}
