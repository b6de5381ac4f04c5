package events

import (
	"time"

	EventBus "github.com/asaskevich/EventBus"
)

// Topics published by the store builder.
const (
	TopicSessionCreated     = "session:created"
	TopicSessionExpired     = "session:expired"
	TopicOnboardingAnswered = "onboarding:answered"
	TopicOnboardingDone     = "onboarding:completed"
	TopicCommentCreated     = "comment:created"
	TopicCommentUpdated     = "comment:updated"
	TopicCommentValidated   = "comment:validated"
	TopicCommentDeleted     = "comment:deleted"
	TopicReviewSubmitted    = "review:submitted"
	TopicMilestoneCompleted = "milestone:completed"
	TopicCartChanged        = "cart:changed"
	TopicProductSaved       = "product:saved"
	TopicProductDeleted     = "product:deleted"
)

// AllTopics lists every topic, used to attach catch-all subscribers.
var AllTopics = []string{
	TopicSessionCreated,
	TopicSessionExpired,
	TopicOnboardingAnswered,
	TopicOnboardingDone,
	TopicCommentCreated,
	TopicCommentUpdated,
	TopicCommentValidated,
	TopicCommentDeleted,
	TopicReviewSubmitted,
	TopicMilestoneCompleted,
	TopicCartChanged,
	TopicProductSaved,
	TopicProductDeleted,
}

// Event is the payload of every topic.
type Event struct {
	Topic     string
	SessionID string
	RemoteIP  string
	Detail    string
	Time      time.Time
}

// Bus publishes store builder events.
type Bus struct {
	bus EventBus.Bus
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

// Publish delivers an event synchronously to the subscribers of its topic.
func (b *Bus) Publish(topic, sessionID, remoteIP, detail string) {
	b.bus.Publish(topic, Event{
		Topic:     topic,
		SessionID: sessionID,
		RemoteIP:  remoteIP,
		Detail:    detail,
		Time:      time.Now(),
	})
}

// Subscribe attaches fn to topic.
func (b *Bus) Subscribe(topic string, fn func(Event)) error {
	return b.bus.Subscribe(topic, fn)
}

// SubscribeAll attaches fn to every topic.
func (b *Bus) SubscribeAll(fn func(Event)) error {
	for _, t := range AllTopics {
		if err := b.bus.Subscribe(t, fn); err != nil {
			return err
		}
	}
	return nil
}

// SubscribeAsync attaches fn to topic; fn runs on its own goroutine,
// serialized per subscriber.
func (b *Bus) SubscribeAsync(topic string, fn func(Event)) error {
	return b.bus.SubscribeAsync(topic, fn, true)
}

// Wait blocks until asynchronous subscribers have drained.
func (b *Bus) Wait() {
	b.bus.WaitAsync()
}
