package routefetch

import (
	"context"
	"time"
)

// historyTimeout bounds a history write after the fetch has ended.
const historyTimeout = 2 * time.Second

// Record is the stored summary of one fetch attempt.
type Record struct {
	FetchID    string        `json:"fetch_id"`
	Start      string        `json:"start"`
	End        string        `json:"end"`
	State      State         `json:"state"`
	Kind       string        `json:"kind,omitempty"`
	Message    string        `json:"message"`
	DistanceKm float64       `json:"distance_km"`
	Duration   time.Duration `json:"duration"`
	Time       time.Time     `json:"time"`
}

// History stores past fetch attempts.
type History interface {
	Append(ctx context.Context, rec Record) error
	// Recent returns at most limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)
}

// SetHistory enables recording of finished attempts. Rejected overlapping
// calls are not recorded.
func (o *Orchestrator) SetHistory(h History) {
	o.mu.Lock()
	o.history = h
	o.mu.Unlock()
}

func (o *Orchestrator) remember(ctx context.Context, start, end string, out Outcome) {
	o.mu.RLock()
	h := o.history
	o.mu.RUnlock()
	if h == nil {
		return
	}
	rec := Record{
		FetchID:    out.FetchID,
		Start:      start,
		End:        end,
		State:      out.State,
		Kind:       out.KindName(),
		Message:    out.Message,
		DistanceKm: out.DistanceKm,
		Duration:   out.Duration,
		Time:       o.now(),
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()
	if err := h.Append(ctx, rec); err != nil {
		o.logger.Warnf("store fetch %s: %v", out.FetchID, err)
	}
}
