package shop

const (
	TopicOrderSubmitted = "storefront.order.submitted"
	TopicOrderReviewed  = "storefront.order.reviewed"
)

// Partition key = customer identity, so events for one customer keep order.
func PartitionKey(identity string) []byte { return []byte(identity) }
