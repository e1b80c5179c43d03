package orders

const (
	TopicOrderCommitted = "storefront.order.committed"
)

// Partition key = order id.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
