package kafka

import "fmt"

// TopicPrefix is prepended to every topic the store publishes to.
const TopicPrefix = "somstore"

// Topic builds "somstore.<domain>.<action>".
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}
