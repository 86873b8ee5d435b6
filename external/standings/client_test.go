package standings

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jamwil123/pool-tracker/internal/platform/resilience"
	"github.com/jamwil123/pool-tracker/internal/usecase"
)

func TestParsePayload_UnwrapsDataAndDerivesDefaults(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"data":{"division":"Division 2","scrapedAt":"2026-01-05T10:00:00Z","source":"league site","standings":[
		{"position":"","team":"The Crown","played":"10","won":"7","drawn":"1","lost":"2","gf":"60","ga":"40","gd":"","points":"22"},
		{"team":"Cue Club","played":10,"won":5,"drawn":0,"lost":5,"gf":0,"ga":0,"points":15,"raw":["","Cue Club","10","5","0","5","48","52","-4","15"]}
	]}}`)

	table, err := parsePayload(raw)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if table.Division != "Division 2" || table.Source != "league site" {
		t.Fatalf("unexpected table header: %+v", table)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("unexpected row count: got=%d want=2", len(table.Rows))
	}

	first := table.Rows[0]
	if first.Position != 1 || first.FrameDiff != 20 || first.Points != 22 {
		t.Fatalf("unexpected first row: %+v", first)
	}

	second := table.Rows[1]
	if second.Position != 2 {
		t.Fatalf("expected index-based position, got=%d", second.Position)
	}
	if second.FramesFor != 48 || second.FramesAgainst != 52 || second.FrameDiff != -4 {
		t.Fatalf("expected frames from raw cells, got %+v", second)
	}
}

func TestParsePayload_AcceptsBareArray(t *testing.T) {
	t.Parallel()

	table, err := parsePayload([]byte(`[{"position":"3","team":"Red Lion","points":"9"}]`))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0].Position != 3 || table.Rows[0].Team != "Red Lion" {
		t.Fatalf("unexpected rows: %+v", table.Rows)
	}
}

func TestParseHTMLTable(t *testing.T) {
	t.Parallel()

	body := []byte(`<html><body><h2>Division 1</h2><table>
		<tr><th>Pos</th><th>Team</th><th>P</th><th>W</th><th>D</th><th>L</th><th>F</th><th>A</th><th>Pts</th></tr>
		<tr><td>1</td><td>The Crown</td><td>10</td><td>8</td><td>0</td><td>2</td><td>70</td><td>30</td><td>24</td></tr>
		<tr><td>2</td><td>Cue Club</td><td>10</td><td>6</td><td>1</td><td>3</td><td>55</td><td>45</td><td>19</td></tr>
	</table></body></html>`)

	table, err := parseHTMLTable(body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	if table.Division != "Division 1" {
		t.Fatalf("unexpected division: %q", table.Division)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("unexpected row count: %d", len(table.Rows))
	}
	if got := table.Rows[0]; got.Team != "The Crown" || got.FrameDiff != 40 || got.Points != 24 {
		t.Fatalf("unexpected first row: %+v", got)
	}
}

func TestClient_FetchTable_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"division":"D1","standings":[{"team":"The Crown","points":"3"}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{URL: server.URL, MaxRetries: 1, Timeout: time.Second})
	table, err := client.FetchTable(t.Context())
	if err != nil {
		t.Fatalf("fetch table: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one retry, got %d calls", calls.Load())
	}
	if len(table.Rows) != 1 || table.ScrapedAt == "" {
		t.Fatalf("unexpected table: %+v", table)
	}
}

func TestClient_FetchTable_OpenCircuitReportsDependencyUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		URL:        server.URL,
		MaxRetries: 0,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	if _, err := client.FetchTable(t.Context()); err == nil {
		t.Fatalf("expected upstream failure")
	}
	_, err := client.FetchTable(t.Context())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestClient_FetchRaw_ForwardsStatusAndBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("unexpected accept header %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"standings":[]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{URL: server.URL})
	resp, err := client.FetchRaw(t.Context())
	if err != nil {
		t.Fatalf("fetch raw: %v", err)
	}
	if resp.StatusCode != http.StatusAccepted || string(resp.Body) != `{"standings":[]}` {
		t.Fatalf("unexpected raw response: %+v", resp)
	}
}
