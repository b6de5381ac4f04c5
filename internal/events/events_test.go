package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	b := NewBus()
	var got []Event
	require.NoError(t, b.Subscribe(TopicCommentCreated, func(e Event) { got = append(got, e) }))

	b.Publish(TopicCommentCreated, "s1", "127.0.0.1", "logo")
	b.Publish(TopicCartChanged, "s1", "127.0.0.1", "ignored")

	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].SessionID)
	assert.Equal(t, "logo", got[0].Detail)
	assert.False(t, got[0].Time.IsZero())
}

func TestSubscribeAllAndAsync(t *testing.T) {
	b := NewBus()
	var mu sync.Mutex
	topics := map[string]int{}
	require.NoError(t, b.SubscribeAll(func(e Event) {
		mu.Lock()
		topics[e.Topic]++
		mu.Unlock()
	}))
	async := 0
	require.NoError(t, b.SubscribeAsync(TopicMilestoneCompleted, func(Event) {
		mu.Lock()
		async++
		mu.Unlock()
	}))

	for _, topic := range AllTopics {
		b.Publish(topic, "s", "", "")
	}
	b.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, topics, len(AllTopics))
	assert.Equal(t, 1, async)
}
