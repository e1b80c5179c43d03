package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront/internal/notify"
	"go.uber.org/zap/zaptest"
)

func TestRelay_DeliversAcrossBuses(t *testing.T) {
	rdb, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	busA, busB := notify.NewBus(), notify.NewBus()
	relayA := NewRelay(rdb, busA, zaptest.NewLogger(t))
	relayB := NewRelay(rdb, busB, zaptest.NewLogger(t))

	readyA, readyB := make(chan struct{}), make(chan struct{})
	go func() { _ = relayA.Run(ctx, readyA) }()
	go func() { _ = relayB.Run(ctx, readyB) }()
	<-readyA
	<-readyB

	gotA := make(chan notify.Topic, 4)
	gotB := make(chan notify.Topic, 4)
	busA.Subscribe(notify.TopicCartUpdated, func(t notify.Topic) { gotA <- t })
	busB.Subscribe(notify.TopicCartUpdated, func(t notify.Topic) { gotB <- t })

	relayA.Publish(notify.TopicCartUpdated)

	select {
	case <-gotA:
	case <-time.After(time.Second):
		t.Fatalf("local subscriber not notified")
	}
	select {
	case <-gotB:
	case <-time.After(2 * time.Second):
		t.Fatalf("remote subscriber not notified")
	}

	// the origin must not get its own echo
	select {
	case <-gotA:
		t.Fatalf("origin received its own notification twice")
	case <-time.After(200 * time.Millisecond):
	}
}
