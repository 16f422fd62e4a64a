package driven

import "context"

// Pinger is implemented by dependencies whose reachability is reported by the
// health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}
