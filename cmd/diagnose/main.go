package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/vontade-empenho/ponto-backend/internal/config"
	"github.com/vontade-empenho/ponto-backend/internal/domain/attendance"
	"github.com/vontade-empenho/ponto-backend/internal/domain/schedule"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/crosschex"
	attendanceService "github.com/vontade-empenho/ponto-backend/internal/service/attendance"
)

const dateLayout = "2006-01-02"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file, using process environment")
	}
	cfg, err := config.Parse()
	if err != nil {
		slog.Error("failed to read environment", "error", err)
		os.Exit(1)
	}

	today := time.Now().In(schedule.ScheduleVE.Location()).Format(dateLayout)
	start := flag.String("start", today, "first day (YYYY-MM-DD)")
	end := flag.String("end", today, "last day (YYYY-MM-DD)")
	key := flag.String("key", cfg.Seed.APIKey, "provider API key (default SEED_API_KEY)")
	secret := flag.String("secret", cfg.Seed.APISecret, "provider API secret (default SEED_API_SECRET)")
	flag.Parse()

	if err := run(cfg.CrossChex, *start, *end, attendance.Credentials{APIKey: *key, APISecret: *secret}); err != nil {
		slog.Error("diagnose failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.CrossChexConfig, startDate, endDate string, creds attendance.Credentials) error {
	if creds.APIKey == "" || creds.APISecret == "" {
		return attendance.ErrMissingCredentials
	}

	loc := schedule.ScheduleVE.Location()
	first, err := time.ParseInLocation(dateLayout, startDate, loc)
	if err != nil {
		return fmt.Errorf("%w: start %q", attendance.ErrInvalidDateRange, startDate)
	}
	last, err := time.ParseInLocation(dateLayout, endDate, loc)
	if err != nil || last.Before(first) {
		return fmt.Errorf("%w: end %q", attendance.ErrInvalidDateRange, endDate)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := crosschex.NewClient(cfg)
	token, err := client.Authorize(ctx, creds)
	if err != nil {
		return fmt.Errorf("failed to authorize: %w", err)
	}

	begin, stop := first, last.AddDate(0, 0, 1)
	records, err := client.AllRecords(ctx, token.Value, begin, stop)
	if err != nil {
		return fmt.Errorf("failed to fetch records: %w", err)
	}
	conv := crosschex.Convert(records)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "range\t%s .. %s\n", startDate, endDate)
	fmt.Fprintf(w, "records\t%d\n", len(records))
	fmt.Fprintf(w, "events\t%d\n", len(conv.Events))
	fmt.Fprintf(w, "employees\t%d\n", len(conv.Employees))
	fmt.Fprintf(w, "duplicates\t%d\n", conv.Duplicates)
	fmt.Fprintf(w, "rejected\t%d\n\n", len(conv.Rejected))

	fmt.Fprintln(w, "CODE\tTYPE\tCLASS\tCOUNT")
	for _, c := range attendanceService.CheckTypeHistogram(conv.Events) {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", c.Code, c.Type, c.Class, c.Count)
	}

	if len(conv.Rejected) > 0 {
		fmt.Fprintln(w, "\nINDEX\tUUID\tREASON")
		for _, r := range conv.Rejected {
			fmt.Fprintf(w, "%d\t%s\t%v\n", r.Index, r.UUID, r.Reason)
		}
	}
	return w.Flush()
}
