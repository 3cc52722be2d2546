package crosschex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vontade-empenho/ponto-backend/internal/domain/attendance"
)

// Source implements attendance.EventSource on top of the provider API.
type Source struct {
	client *Client
	tokens *TokenProvider
}

func NewSource(client *Client, tokens *TokenProvider) *Source {
	return &Source{client: client, tokens: tokens}
}

// FetchEvents implements attendance.EventSource.
func (s *Source) FetchEvents(ctx context.Context, creds attendance.Credentials, begin, end time.Time) (attendance.EventBatch, error) {
	if creds.APIKey == "" || creds.APISecret == "" {
		return attendance.EventBatch{}, attendance.ErrMissingCredentials
	}

	token, err := s.tokens.Token(ctx, creds)
	if err != nil {
		return attendance.EventBatch{}, fmt.Errorf("%w: %w", attendance.ErrProviderUnavailable, err)
	}

	records, err := s.client.AllRecords(ctx, token.Value, begin, end)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Unauthorized() {
			if invErr := s.tokens.Invalidate(ctx, creds); invErr != nil {
				slog.Warn("failed to invalidate provider token", "error", invErr)
			}
		}
		return attendance.EventBatch{}, fmt.Errorf("%w: %w", attendance.ErrProviderUnavailable, err)
	}

	conv := Convert(records)
	for _, r := range conv.Rejected {
		slog.Warn("rejected provider record", "index", r.Index, "uuid", r.UUID, "reason", r.Reason)
	}

	events := make([]attendance.CheckEvent, 0, len(conv.Events))
	outOfRange := 0
	for _, ev := range conv.Events {
		if ev.Timestamp.Before(begin) || !ev.Timestamp.Before(end) {
			outOfRange++
			continue
		}
		events = append(events, ev)
	}
	if conv.Duplicates > 0 || outOfRange > 0 {
		slog.Info("dropped provider records",
			"duplicates", conv.Duplicates,
			"out_of_range", outOfRange,
			"begin", begin,
			"end", end,
		)
	}

	return attendance.EventBatch{
		Events:     events,
		Employees:  conv.Employees,
		Rejected:   len(conv.Rejected),
		Duplicates: conv.Duplicates,
		OutOfRange: outOfRange,
	}, nil
}
