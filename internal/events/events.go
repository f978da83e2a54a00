// Package events carries cross-component notifications (new contact, new
// order) over an in-process bus so the web handlers never block on email
// delivery or other side effects.
package events

import "github.com/asaskevich/EventBus"

const (
	TopicContactCreated     = "portal:contact:created"
	TopicMessageCreated     = "portal:message:created"
	TopicOrderCreated       = "portal:order:created"
	TopicTestimonialCreated = "portal:testimonial:created"
)

var Bus = EventBus.New()

// Publish fires a topic asynchronously; missing subscribers are fine.
func Publish(topic string, args ...interface{}) {
	Bus.Publish(topic, args...)
}

// Subscribe attaches an async handler to a topic.
func Subscribe(topic string, fn interface{}) error {
	return Bus.SubscribeAsync(topic, fn, false)
}
