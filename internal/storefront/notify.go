// internal/storefront/notify.go
package storefront

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level of a user-facing notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Notification is a short message meant for the visitor
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier delivers notifications to the visitor
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the log
type LogNotifier struct {
	Log logrus.FieldLogger
}

// Notify logs n at a level matching its severity
func (l LogNotifier) Notify(_ context.Context, n Notification) {
	entry := l.Log.WithField("notification", n.Level)
	switch n.Level {
	case LevelError:
		entry.Warn(n.Message)
	case LevelWarning:
		entry.Info(n.Message)
	default:
		entry.Debug(n.Message)
	}
}

type collectorKey struct{}

// Collector gathers the notifications raised while handling one request
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

// WithCollector attaches a fresh collector to ctx
func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

// CollectorFrom returns the collector attached to ctx
func CollectorFrom(ctx context.Context) (*Collector, bool) {
	c, ok := ctx.Value(collectorKey{}).(*Collector)
	return c, ok
}

// All returns the collected notifications in order
func (c *Collector) All() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Last returns the most recent notification
func (c *Collector) Last() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return Notification{}, false
	}
	return c.items[len(c.items)-1], true
}

func (c *Collector) add(n Notification) {
	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()
}

// fanout sends to the configured notifier and to the request's collector, if any
type fanout struct {
	next Notifier
}

func (f fanout) Notify(ctx context.Context, n Notification) {
	if c, ok := CollectorFrom(ctx); ok {
		c.add(n)
	}
	if f.next != nil {
		f.next.Notify(ctx, n)
	}
}
