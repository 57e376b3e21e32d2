package prices

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func chartPayload(days []string, closes []string) string {
	var stamps []string
	for _, d := range days {
		t, _ := time.Parse("2006-01-02", d)
		stamps = append(stamps, fmt.Sprintf("%d", t.Unix()))
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`,
		strings.Join(stamps, ","), strings.Join(closes, ","))
}

func TestYahooClient_History(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if got := r.URL.Query().Get("interval"); got != "1d" {
			t.Errorf("interval = %q, want 1d", got)
		}
		fmt.Fprint(w, chartPayload(
			[]string{"2024-03-01", "2024-03-04", "2024-03-05"},
			[]string{"100.5", "null", "102.25"},
		))
	}))
	defer server.Close()

	client := NewYahooClient(WithBaseURL(server.URL), WithRateLimit(1000))
	series, err := client.History(context.Background(), "NVDA",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/v8/finance/chart/NVDA" {
		t.Errorf("path = %q", gotPath)
	}
	if len(series) != 2 {
		t.Fatalf("got %d closes, want 2 (null close skipped)", len(series))
	}
	if series["2024-03-01"] != 100.5 || series["2024-03-05"] != 102.25 {
		t.Errorf("unexpected series: %v", series)
	}
}

func TestYahooClient_ChartError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer server.Close()

	client := NewYahooClient(WithBaseURL(server.URL), WithRateLimit(1000))
	_, err := client.History(context.Background(), "GONE", time.Now().AddDate(0, -1, 0), time.Now())
	if err == nil || !strings.Contains(err.Error(), "delisted") {
		t.Fatalf("expected chart error, got %v", err)
	}
}

func TestYahooClient_HTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewYahooClient(WithBaseURL(server.URL), WithRateLimit(1000))
	if _, err := client.History(context.Background(), "SPY", time.Now().AddDate(0, -1, 0), time.Now()); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}

func TestYahooClient_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer server.Close()

	client := NewYahooClient(WithBaseURL(server.URL), WithRateLimit(1000))
	series, err := client.History(context.Background(), "SPY", time.Now().AddDate(0, -1, 0), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("expected empty series, got %v", series)
	}
}
