package crosschex

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Record is one attendance record as the provider sends it. CheckType is
// kept raw so that the conversion step can reject non-integer codes.
type Record struct {
	UUID      string          `json:"uuid"`
	CheckType json.RawMessage `json:"checktype"`
	CheckTime string          `json:"checktime"`
	Device    struct {
		SerialNumber string `json:"serial_number"`
		Name         string `json:"name"`
	} `json:"device"`
	Employee struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		WorkNo    string `json:"workno"`
	} `json:"employee"`
}

// RecordPage is one page of attendance.record/getrecord.
type RecordPage struct {
	Count     int      `json:"count"`
	List      []Record `json:"list"`
	Page      int      `json:"page"`
	PerPage   int      `json:"perPage"`
	PageCount int      `json:"pageCount"`
}

type recordsPayload struct {
	BeginTime string `json:"begin_time"`
	EndTime   string `json:"end_time"`
	Order     string `json:"order"`
	Page      int    `json:"page"`
	PerPage   int    `json:"per_page"`
}

// Records fetches a single page, newest first.
func (c *Client) Records(ctx context.Context, token string, begin, end time.Time, page, perPage int) (RecordPage, error) {
	req := c.newRequest("attendance.record", "getrecord", token, recordsPayload{
		BeginTime: FormatTime(begin),
		EndTime:   FormatTime(end),
		Order:     "desc",
		Page:      page,
		PerPage:   perPage,
	})

	var out RecordPage
	if err := c.call(ctx, req, &out); err != nil {
		return RecordPage{}, err
	}
	return out, nil
}

// AllRecords fetches every page of [begin, end). The first page gives the
// total; the remaining pages are fetched concurrently and merged in page
// order. An empty page ends the listing.
func (c *Client) AllRecords(ctx context.Context, token string, begin, end time.Time) ([]Record, error) {
	first, err := c.Records(ctx, token, begin, end, 1, c.perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records page 1: %w", err)
	}
	if len(first.List) == 0 {
		return nil, nil
	}

	totalPages := (first.Count + c.perPage - 1) / c.perPage
	if totalPages <= 1 {
		return first.List, nil
	}

	pages := make([][]Record, totalPages)
	pages[0] = first.List

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for p := 2; p <= totalPages; p++ {
		page := p
		g.Go(func() error {
			resp, err := c.Records(gctx, token, begin, end, page, c.perPage)
			if err != nil {
				return fmt.Errorf("failed to fetch records page %d: %w", page, err)
			}
			pages[page-1] = resp.List
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]Record, 0, first.Count)
	for _, list := range pages {
		if len(list) == 0 {
			break
		}
		records = append(records, list...)
	}
	return records, nil
}
