package web2pdf

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Lifecycle event names emitted by the browser once
// Page.setLifecycleEventsEnabled is on.
const (
	lifecycleLoad        = "load"
	lifecycleNetworkIdle = "networkIdle"
)

// lifecycleWatcher records page lifecycle events per navigation, keyed by
// loader ID so events from the tab's initial about:blank document are
// never mistaken for the target page's.
type lifecycleWatcher struct {
	mu     sync.Mutex
	seen   map[cdp.LoaderID]map[string]bool
	signal chan struct{}
}

// watchLifecycle subscribes to lifecycle events on the tab behind ctx.
// It must be installed before navigation starts.
func watchLifecycle(ctx context.Context) *lifecycleWatcher {
	w := &lifecycleWatcher{
		seen:   make(map[cdp.LoaderID]map[string]bool),
		signal: make(chan struct{}, 1),
	}
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok {
			w.record(e.LoaderID, e.Name)
		}
	})
	return w
}

// record marks the event as seen and wakes any waiter.
func (w *lifecycleWatcher) record(loaderID cdp.LoaderID, name string) {
	w.mu.Lock()
	names := w.seen[loaderID]
	if names == nil {
		names = make(map[string]bool)
		w.seen[loaderID] = names
	}
	names[name] = true
	w.mu.Unlock()

	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// wait blocks until the named lifecycle event has been observed for the
// given navigation, or ctx is done. Events are recorded monotonically, so
// waiting for an event that already fired returns immediately.
func (w *lifecycleWatcher) wait(ctx context.Context, loaderID cdp.LoaderID, name string) error {
	for {
		w.mu.Lock()
		done := w.seen[loaderID][name]
		w.mu.Unlock()
		if done {
			return nil
		}
		select {
		case <-w.signal:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
