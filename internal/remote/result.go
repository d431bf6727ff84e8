package remote

import "time"

// Status is the outcome of a remote call.
type Status string

// Remote call outcomes.
const (
	StatusOK              Status = "ok"
	StatusNotConfigured   Status = "not_configured"
	StatusUnauthenticated Status = "unauthenticated"
	StatusError           Status = "error"
	StatusIdle            Status = "idle"
)

// Result reports a remote call. Remote failures are never returned as errors,
// local operations go on regardless of the outcome.
type Result struct {
	Status  Status    `json:"status"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Status == StatusOK }

func result(status Status, msg string) Result {
	return Result{Status: status, Message: msg, At: time.Now().UTC()}
}
