package pubsub

import "context"

// Publisher sends a pack to a topic. Packs sharing a key keep their order.
type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
}
