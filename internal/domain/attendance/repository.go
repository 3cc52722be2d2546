package attendance

import (
	"context"
	"time"
)

// EventSource yields every event in [begin, end) for a tenant, already
// merged across pages, in unspecified order.
type EventSource interface {
	FetchEvents(ctx context.Context, creds Credentials, begin, end time.Time) (EventBatch, error)
}
