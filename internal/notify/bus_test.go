package notify

import (
	"reflect"
	"testing"
)

func TestBus_OrderedDelivery(t *testing.T) {
	b := NewBus()
	var got []string
	b.Subscribe(TopicCartUpdated, func(Topic) { got = append(got, "a") })
	b.Subscribe(TopicCartUpdated, func(Topic) { got = append(got, "b") })
	b.Subscribe(TopicCurrencyChanged, func(Topic) { got = append(got, "currency") })

	b.Publish(TopicCartUpdated)

	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected delivery: %v", got)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	calls := 0
	unsub := b.Subscribe(TopicCartUpdated, func(Topic) { calls++ })

	b.Publish(TopicCartUpdated)
	unsub()
	unsub() // second call is a no-op
	b.Publish(TopicCartUpdated)

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestBus_LateSubscriberGetsNoReplay(t *testing.T) {
	b := NewBus()
	b.Publish(TopicCartUpdated)

	calls := 0
	b.Subscribe(TopicCartUpdated, func(Topic) { calls++ })
	if calls != 0 {
		t.Fatalf("late subscriber must not see earlier notifications")
	}
}

func TestBus_SubscribeDuringPublish(t *testing.T) {
	b := NewBus()
	inner := 0
	b.Subscribe(TopicCartUpdated, func(Topic) {
		b.Subscribe(TopicCartUpdated, func(Topic) { inner++ })
	})

	b.Publish(TopicCartUpdated)
	if inner != 0 {
		t.Fatalf("subscriber added during publish must not receive the current notification")
	}
	b.Publish(TopicCartUpdated)
	if inner != 1 {
		t.Fatalf("expected added subscriber to see the next notification, got %d", inner)
	}
}
