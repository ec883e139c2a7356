package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridboard/pkg/observability"
)

// logHooks writes observability events to a logger at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnMove(id string, dx, dy int) {
	h.logger.Debug("widget moved", "id", id, "dx", dx, "dy", dy)
}

func (h *logHooks) OnResize(id string, dw, dh int) {
	h.logger.Debug("widget resized", "id", id, "dw", dw, "dh", dh)
}

func (h *logHooks) OnRejected(op, id string) {
	h.logger.Debug("edit rejected", "op", op, "id", id)
}

func (h *logHooks) OnCompact(kind string, n int, d time.Duration) {
	if kind == "" {
		kind = "none"
	}
	h.logger.Debug("compacted", "kind", kind, "widgets", n, "duration", d)
}

func (h *logHooks) OnRemove(id string, removed bool) {
	h.logger.Debug("remove", "id", id, "removed", removed)
}

func (h *logHooks) OnSave(ctx context.Context, backend, id string, d time.Duration, err error) {
	h.storeEvent("save", backend, id, d, err)
}

func (h *logHooks) OnLoad(ctx context.Context, backend, id string, d time.Duration, err error) {
	h.storeEvent("load", backend, id, d, err)
}

func (h *logHooks) OnDelete(ctx context.Context, backend, id string, d time.Duration, err error) {
	h.storeEvent("delete", backend, id, d, err)
}

func (h *logHooks) storeEvent(op, backend, id string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("store "+op+" failed", "backend", backend, "id", id, "duration", d, "err", err)
		return
	}
	h.logger.Debug("store "+op, "backend", backend, "id", id, "duration", d)
}

func (h *logHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(ctx context.Context, method, path string) {}

func (h *logHooks) OnResponse(ctx context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("route", "method", method, "route", path, "status", status, "duration", d)
}

var (
	_ observability.EngineHooks = (*logHooks)(nil)
	_ observability.StoreHooks  = (*logHooks)(nil)
	_ observability.CacheHooks  = (*logHooks)(nil)
	_ observability.HTTPHooks   = (*logHooks)(nil)
)
