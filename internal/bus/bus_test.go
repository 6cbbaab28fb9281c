package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"candleview/internal/scale"
)

func TestTopic_PublishInOrder(t *testing.T) {
	b := New()
	var got []string
	b.SetDomain.Subscribe(func(ev SetDomainEvent) { got = append(got, "a") })
	b.SetDomain.Subscribe(func(ev SetDomainEvent) { got = append(got, "b") })

	n := b.SetDomain.Publish(SetDomainEvent{Domain: [2]int64{1, 2}})
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestTopic_Unsubscribe(t *testing.T) {
	var topic Topic[ZoomEndEvent]
	calls := 0
	cancel := topic.Subscribe(func(ZoomEndEvent) { calls++ })
	topic.Subscribe(func(ZoomEndEvent) {})

	cancel()
	cancel()
	topic.Publish(ZoomEndEvent{T: scale.Identity})

	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, topic.Len())
}

func TestTopic_EmptyPublishIsNoop(t *testing.T) {
	var topic Topic[ZoomedEvent]
	assert.Equal(t, 0, topic.Publish(ZoomedEvent{T: scale.Identity}))
}
