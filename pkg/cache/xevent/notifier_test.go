package xevent

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_PublishInSubscriptionOrder(t *testing.T) {
	n := NewNotifier(nil)
	var order []int

	n.Subscribe(KindSet, func(Event) { order = append(order, 1) })
	n.Subscribe(KindSet, func(Event) { order = append(order, 2) })
	n.Subscribe(KindSet, func(Event) { order = append(order, 3) })

	n.Publish(Event{Kind: Kind("set"), At: time.Now()})

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestNotifier_KindFiltering(t *testing.T) {
	n := NewNotifier(nil)
	var hits, misses int

	n.Subscribe(KindHit, func(Event) { hits++ })
	n.Subscribe(KindMiss, func(Event) { misses++ })

	n.Publish(Event{Kind: KindHit})
	n.Publish(Event{Kind: KindHit})
	n.Publish(Event{Kind: KindMiss})

	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, misses)
}

func TestNotifier_Unsubscribe_Idempotent(t *testing.T) {
	n := NewNotifier(nil)
	var calls int

	sub := n.Subscribe(KindDelete, func(Event) { calls++ })
	require.NotNil(t, sub)
	assert.NotEmpty(t, sub.ID())

	n.Publish(Event{Kind: KindDelete})
	sub.Unsubscribe()
	sub.Unsubscribe() // 幂等
	n.Publish(Event{Kind: KindDelete})

	assert.Equal(t, 1, calls)
}

func TestNotifier_SubscribeOnce_AutoUnsubscribes(t *testing.T) {
	n := NewNotifier(nil)
	var calls int

	n.SubscribeOnce(KindEvict, func(Event) { calls++ })

	n.Publish(Event{Kind: KindEvict})
	n.Publish(Event{Kind: KindEvict})

	assert.Equal(t, 1, calls)
}

func TestNotifier_HandlerPanicIsolated(t *testing.T) {
	n := NewNotifier(slog.Default())
	var after int

	n.Subscribe(KindSet, func(Event) { panic("boom") })
	n.Subscribe(KindSet, func(Event) { after++ })

	// panic 不传播，后续处理器照常投递。
	assert.NotPanics(t, func() {
		n.Publish(Event{Kind: KindSet})
	})
	assert.Equal(t, 1, after)
}

func TestNotifier_OncePanicStillUnsubscribes(t *testing.T) {
	n := NewNotifier(nil)
	var calls int

	n.SubscribeOnce(KindSet, func(Event) {
		calls++
		panic("boom")
	})

	n.Publish(Event{Kind: KindSet})
	n.Publish(Event{Kind: KindSet})

	assert.Equal(t, 1, calls)
}

func TestNotifier_NilHandlerRejected(t *testing.T) {
	n := NewNotifier(nil)
	assert.Nil(t, n.Subscribe(KindHit, nil))
}

func TestNotifier_Close(t *testing.T) {
	n := NewNotifier(nil)
	var calls int
	n.Subscribe(KindHit, func(Event) { calls++ })

	n.Close()
	n.Publish(Event{Kind: KindHit})
	assert.Equal(t, 0, calls)

	// 关闭后拒绝新订阅。
	assert.Nil(t, n.Subscribe(KindHit, func(Event) {}))
}
