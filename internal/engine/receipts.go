package engine

import "github.com/emberdate/spark/internal/types"

// Read-receipt emitter. Runs after every confirmed-list refresh: any partner
// message still unread gets acknowledged in one batched read event. The ids
// are marked read locally at the same time so the next recomputation does
// not re-emit; a duplicate emission racing an in-flight refresh is harmless
// because the server treats read-marking idempotently.
func (e *Engine) emitReadReceipts() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	ids := e.store.UnreadFrom(e.cfg.UserID)
	if len(ids) > 0 {
		e.store.MarkRead(ids)
	}
	e.mu.Unlock()

	if len(ids) == 0 {
		return
	}
	e.send(types.Event{
		Type:       types.EventRead,
		MatchID:    e.cfg.MatchID,
		MessageIDs: ids,
	})
}
