package stomp

import "strings"

// DestinationType classifies a Destination's target kind.
type DestinationType int8

const (
	// DestinationNone signals the absence of a destination, distinct
	// from a Queue whose physical name happens to be empty.
	DestinationNone DestinationType = iota
	Queue
	Topic
	TempQueue
	TempTopic
)

const (
	queuePrefix     = "/queue/"
	topicPrefix     = "/topic/"
	tempQueuePrefix = "/temp-queue/"
	tempTopicPrefix = "/temp-topic/"
)

// Destination is a typed STOMP destination: a queue, topic, temporary queue,
// or temporary topic, plus its physical (broker-local) name.
type Destination struct {
	Type     DestinationType
	Physical string
}

// IsNone reports whether d is the zero/absent destination.
func (d Destination) IsNone() bool {
	return d.Type == DestinationNone && d.Physical == ""
}

// prefix returns the wire prefix for d's type, or "" for DestinationNone.
func (d Destination) prefix() string {
	switch d.Type {
	case Queue:
		return queuePrefix
	case Topic:
		return topicPrefix
	case TempQueue:
		return tempQueuePrefix
	case TempTopic:
		return tempTopicPrefix
	default:
		return ""
	}
}

// ConvertToString renders d in its textual prefix form, e.g. "/queue/Foo".
// The zero Destination renders as "".
func ConvertToString(d Destination) string {
	if d.IsNone() {
		return ""
	}
	return d.prefix() + d.Physical
}

// ConvertToDestination parses a textual destination, matching the longest
// known prefix. A string with no recognized prefix is treated as a Queue
// with the whole string as its physical name (the historical default). An
// empty string yields the zero (DestinationNone) Destination.
func ConvertToDestination(s string) Destination {
	if s == "" {
		return Destination{}
	}
	switch {
	case strings.HasPrefix(s, tempQueuePrefix):
		return Destination{Type: TempQueue, Physical: s[len(tempQueuePrefix):]}
	case strings.HasPrefix(s, tempTopicPrefix):
		return Destination{Type: TempTopic, Physical: s[len(tempTopicPrefix):]}
	case strings.HasPrefix(s, queuePrefix):
		return Destination{Type: Queue, Physical: s[len(queuePrefix):]}
	case strings.HasPrefix(s, topicPrefix):
		return Destination{Type: Topic, Physical: s[len(topicPrefix):]}
	default:
		return Destination{Type: Queue, Physical: s}
	}
}
