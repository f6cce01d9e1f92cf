package xevent

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Handler 是事件处理函数。
type Handler func(Event)

// Subscription 是订阅句柄。
type Subscription interface {
	// ID 返回订阅的唯一标识。
	ID() string

	// Unsubscribe 注销订阅，幂等。
	Unsubscribe()
}

// Notifier 是同步的事件发布器。
// 必须通过 NewNotifier 创建。并发保护仅覆盖订阅表本身；
// Publish 的投递顺序与调用顺序一致由调用方（引擎锁）保证。
type Notifier struct {
	mu     sync.Mutex
	subs   map[Kind][]*subscription
	logger *slog.Logger
	closed bool
}

type subscription struct {
	id       string
	kind     Kind
	handler  Handler
	once     bool
	notifier *Notifier
}

func (s *subscription) ID() string { return s.id }

func (s *subscription) Unsubscribe() {
	s.notifier.remove(s.kind, s.id)
}

// NewNotifier 创建事件发布器。
// logger 用于上报处理器 panic，传 nil 时静默丢弃。
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{
		subs:   make(map[Kind][]*subscription),
		logger: logger,
	}
}

// Subscribe 订阅指定类型的事件，返回可注销的句柄。
// handler 为 nil 或发布器已关闭时返回 nil。
func (n *Notifier) Subscribe(kind Kind, handler Handler) Subscription {
	return n.subscribe(kind, handler, false)
}

// SubscribeOnce 订阅一次性事件，首次投递后自动注销。
func (n *Notifier) SubscribeOnce(kind Kind, handler Handler) Subscription {
	return n.subscribe(kind, handler, true)
}

func (n *Notifier) subscribe(kind Kind, handler Handler, once bool) Subscription {
	if handler == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	sub := &subscription{
		id:       uuid.NewString(),
		kind:     kind,
		handler:  handler,
		once:     once,
		notifier: n,
	}
	n.subs[kind] = append(n.subs[kind], sub)
	return sub
}

// Publish 同步投递事件给该类型的全部订阅者，按订阅顺序。
// 处理器 panic 被捕获上报，不影响后续订阅者，也不传播给调用方。
func (n *Notifier) Publish(e Event) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	current := make([]*subscription, len(n.subs[e.Kind]))
	copy(current, n.subs[e.Kind])
	n.mu.Unlock()

	for _, sub := range current {
		// 一次性订阅先注销再投递，避免处理器内 panic 时漏注销。
		if sub.once {
			n.remove(sub.kind, sub.id)
		}
		n.deliver(sub, e)
	}
}

// deliver 投递单个事件并隔离处理器 panic。
func (n *Notifier) deliver(sub *subscription, e Event) {
	defer func() {
		if r := recover(); r != nil && n.logger != nil {
			n.logger.Error("xevent: handler panic isolated",
				"kind", string(e.Kind), "key", e.Key, "subscription", sub.id, "panic", r)
		}
	}()
	sub.handler(e)
}

// Close 注销全部订阅并拒绝后续订阅与发布，幂等。
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	n.subs = make(map[Kind][]*subscription)
}

// remove 按 (kind, id) 注销订阅，不存在时静默返回。
func (n *Notifier) remove(kind Kind, id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	list := n.subs[kind]
	for i, sub := range list {
		if sub.id == id {
			n.subs[kind] = append(list[:i], list[i+1:]...)
			return
		}
	}
}
