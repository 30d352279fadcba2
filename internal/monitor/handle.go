package monitor

// Handle is the result of assembling a Monitor: either a ready instance or
// a degraded marker carrying the reason assembly failed. Callers branch on
// the state explicitly instead of probing for nil fields.
type Handle struct {
	mon    *Monitor
	reason string
}

// Ready wraps a working Monitor.
func Ready(m *Monitor) Handle {
	return Handle{mon: m}
}

// Degraded marks assembly as failed with a human-readable reason.
func Degraded(reason string) Handle {
	return Handle{reason: reason}
}

// Monitor returns the instance and true when the handle is ready.
func (h Handle) Monitor() (*Monitor, bool) {
	return h.mon, h.mon != nil
}

// IsDegraded reports whether assembly failed.
func (h Handle) IsDegraded() bool {
	return h.mon == nil
}

// Reason returns the degradation reason, empty for a ready handle.
func (h Handle) Reason() string {
	return h.reason
}
