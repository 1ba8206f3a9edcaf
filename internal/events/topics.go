package events

const (
	TopicGiftLifecycle      = "gift.lifecycle"
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status.changed"
)

// Partition key = entity id, so every event for one entity keeps its order.
func PartitionKey(id string) []byte { return []byte(id) }
