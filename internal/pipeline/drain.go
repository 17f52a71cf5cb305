package pipeline

import "time"

// DefaultPollInterval is how often a consumer checks the event stream.
const DefaultPollInterval = 100 * time.Millisecond

// Drain polls events every interval, handing each queued event to handle in
// order. It returns the terminal event, or nil if the stream closes without
// one.
func Drain(events <-chan Event, interval time.Duration, handle func(Event)) Event {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
	queued:
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				if handle != nil {
					handle(ev)
				}
				if ev.Terminal() {
					return ev
				}
			default:
				break queued
			}
		}
	}
	return nil
}
