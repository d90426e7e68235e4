package bookgen

import (
	"context"
	"time"
)

// Call statuses recorded per upstream attempt.
const (
	CallOK       = "ok"
	CallError    = "error"
	CallFallback = "fallback"
)

// CallRecorder receives one record per upstream generation attempt. The
// repo-backed implementation writes ai_call_logs rows; recording is
// best-effort and a nil recorder is valid.
type CallRecorder interface {
	Record(ctx context.Context, provider, operation, status string, latency time.Duration, errMsg string)
}

func record(ctx context.Context, r CallRecorder, provider, operation, status string, latency time.Duration, err error) {
	if r == nil {
		return
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.Record(ctx, provider, operation, status, latency, msg)
}
