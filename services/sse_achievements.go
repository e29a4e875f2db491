package services

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// StreamUnlocksSSE streams achievement unlocks for the authenticated user in
// real time. Fed by the progress store subscription, so an event is pushed
// the moment a recompute confirms a first unlock — delivery here is
// best-effort UI feedback; the notification outbox is the durable channel.
func (s *EvaluationService) StreamUnlocksSSE(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	updates, cancel := s.Store.Subscribe(userID)

	// Use fasthttp stream writer (this replaces Flush)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		keepalive := time.NewTicker(25 * time.Second)
		defer keepalive.Stop()

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				for _, unlock := range snap.NewUnlocks {
					payload, err := json.Marshal(unlock)
					if err != nil {
						continue
					}
					fmt.Fprintf(w, "event: achievement\ndata: %s\n\n", payload)
				}
				levelPayload, err := json.Marshal(snap.Level)
				if err == nil {
					fmt.Fprintf(w, "event: level\ndata: %s\n\n", levelPayload)
				}
				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-keepalive.C:
				w.WriteString(":\n\n")
				if err := w.Flush(); err != nil {
					return
				}

			case <-c.Context().Done():
				// Client closed connection
				return
			}
		}
	})

	return nil
}
