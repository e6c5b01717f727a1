package orders

const TopicLessonBooked = "lesson.booked"

// Partition key = order_id so every event of one order keeps ordering.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
