package core

import (
	"context"
	"time"

	"remindbot/internal/eventbus"
	"remindbot/internal/notifier"
	"remindbot/internal/storage"
	logx "remindbot/pkg/logx"
)

// runHistoryWriter mirrors delivery events from the bus into the history
// store. A nil store turns it into a pure drain so publishers never notice.
func runHistoryWriter(ctx context.Context, bus eventbus.Bus, store storage.Store, log logx.Logger) {
	events, unsub := bus.Subscribe(64)
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if store == nil {
				continue
			}
			de, ok := ev.Data.(notifier.DeliveryEvent)
			if !ok {
				continue
			}
			entry := storage.DeliveryEntry{
				At:      de.At,
				OwnerID: de.OwnerID,
				Kind:    de.Kind,
				Text:    de.Text,
				OK:      ev.Type == "notifier.sent",
				Error:   de.Error,
			}
			wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := store.AppendDelivery(wctx, entry); err != nil {
				log.Warn("history append failed",
					logx.String("owner", entry.OwnerID),
					logx.Err(err))
			}
			cancel()
		}
	}
}
