package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// sseHeartbeat keeps idle connections alive through proxies.
const sseHeartbeat = 30 * time.Second

// SSEHandler streams broker events to the client as server-sent events.
// The subscription lives until the client disconnects.
func SSEHandler(b *Broker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		sub := b.Subscribe()
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer b.Unsubscribe(sub)
			streamEvents(w, sub)
		})
		return nil
	}
}

// streamEvents writes events in SSE wire format until the subscription
// closes or the client stops reading.
func streamEvents(w *bufio.Writer, sub chan Event) {
	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case evt, ok := <-sub:
			if !ok {
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, payload)
			if err := w.Flush(); err != nil {
				return
			}
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			if err := w.Flush(); err != nil {
				return
			}
		}
	}
}
