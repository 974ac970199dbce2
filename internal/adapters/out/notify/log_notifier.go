// internal/adapters/out/notify/log_notifier.go
package notify

import (
	"context"
	"log"

	"agrimart/internal/application/usecase"
)

// LogNotifier relays cart notifications to the process log. The
// storefront client renders the same notifications as toasts; the log
// copy is what operators see.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Notify(_ context.Context, msg usecase.Notification) {
	if msg.OK {
		log.Printf("[cart_notify] ok: %s", msg.Message)
		return
	}
	log.Printf("[cart_notify] FAIL: %s", msg.Message)
}

// MultiNotifier fans one notification out to several sinks.
type MultiNotifier struct {
	Sinks []usecase.Notifier
}

func NewMultiNotifier(sinks ...usecase.Notifier) *MultiNotifier {
	out := &MultiNotifier{}
	for _, s := range sinks {
		if s != nil {
			out.Sinks = append(out.Sinks, s)
		}
	}
	return out
}

func (n *MultiNotifier) Notify(ctx context.Context, msg usecase.Notification) {
	for _, s := range n.Sinks {
		s.Notify(ctx, msg)
	}
}

var (
	_ usecase.Notifier = (*LogNotifier)(nil)
	_ usecase.Notifier = (*MultiNotifier)(nil)
)
