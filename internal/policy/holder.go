package policy

import (
	"log/slog"
	"sync/atomic"
)

// Holder publishes the current policy snapshot. Reload swaps the whole snapshot
// atomically, so a validation call never sees a half-updated policy.
type Holder struct {
	path    string
	current atomic.Pointer[Policy]
	logger  *slog.Logger
}

// NewHolder loads path, or the default policy when path is empty.
func NewHolder(path string, logger *slog.Logger) (*Holder, error) {
	h := &Holder{path: path, logger: logger}
	p := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		p = loaded
	}
	h.current.Store(p)
	return h, nil
}

// Static wraps a fixed policy; Reload is a no-op. Useful for tests.
func Static(p *Policy) *Holder {
	h := &Holder{}
	h.current.Store(p)
	return h
}

// Current returns the snapshot to use for one validation call.
func (h *Holder) Current() *Policy {
	return h.current.Load()
}

// Reload re-reads the policy file. On error the previous snapshot stays active.
func (h *Holder) Reload() error {
	if h.path == "" {
		return nil
	}
	p, err := Load(h.path)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("policy reload failed, keeping previous snapshot", "path", h.path, "error", err)
		}
		return err
	}
	h.current.Store(p)
	if h.logger != nil {
		h.logger.Info("policy reloaded", "path", h.path)
	}
	return nil
}
