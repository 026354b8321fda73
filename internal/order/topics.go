package order

const (
	TopicOrderCreated       = "pedido.created"
	TopicOrderStatusChanged = "pedido.status_changed"
	TopicOrderDeleted       = "pedido.deleted"
)

// Partition key = pedido id, so all events of one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
