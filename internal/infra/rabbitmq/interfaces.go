package rabbitmq

import "context"

// PublisherInterface lets services publish events without binding to a live
// broker connection; tests swap in a mock.
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

var _ PublisherInterface = (*Publisher)(nil)
