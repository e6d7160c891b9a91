package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/academiagorila/bjj-schedule/internal/service"
)

func newFixtureUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	read := func(name string) []byte {
		data, err := os.ReadFile("../../testdata/fixtures/" + name)
		if err != nil {
			t.Fatalf("failed to load test fixture %s: %v", name, err)
		}
		return data
	}
	startingLists := read("starting_lists.html")
	schedule := read("schedule.json")
	events := read("events.html")

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pl/events/1234-polish-open-2025/starting-lists":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(startingLists)
		case "/api/events/1234/schedules":
			w.Header().Set("Content-Type", "application/json")
			w.Write(schedule)
		case "/pl/events", "/pl/events/archive":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(events)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)
	return upstream
}

// run executes the CLI against upstream and returns stdout.
func run(t *testing.T, upstream string, args ...string) (string, error) {
	t.Helper()
	envFile := filepath.Join(t.TempDir(), "missing.env")

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--base-url", upstream, "--env-file", envFile))

	err := cmd.Execute()
	return stdout.String(), err
}

func TestScheduleCommand_InvalidEventID(t *testing.T) {
	var hits atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer upstream.Close()

	tests := []struct {
		name    string
		command string
		eventID string
	}{
		{"schedule whitespace only", "schedule", "   "},
		{"schedule too long", "schedule", "1" + strings.Repeat("x", service.MaxEventIDLength)},
		{"announce whitespace only", "announce", "\t"},
		{"announce too long", "announce", "1" + strings.Repeat("x", service.MaxEventIDLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, upstream.URL, tt.command, tt.eventID, "--club", "academia_gorila_warszawa")
			if !errors.Is(err, service.ErrInvalidEventID) {
				t.Errorf("%s error = %v, want ErrInvalidEventID", tt.command, err)
			}
		})
	}

	if got := hits.Load(); got != 0 {
		t.Errorf("upstream received %d requests, want 0", got)
	}
}

func TestScheduleCommand(t *testing.T) {
	upstream := newFixtureUpstream(t)

	t.Run("text", func(t *testing.T) {
		out, err := run(t, upstream.URL, "schedule", "1234-polish-open-2025", "--club", "academia_gorila_warszawa")
		if err != nil {
			t.Fatalf("schedule error = %v", err)
		}

		for _, want := range []string{
			"Academia Gorila (Warszawa)",
			"Sobota (3):",
			"09:00 - 09:30  Mata 2    Jan Kowalski (Men -70kg)",
			"Niedziela (1):",
			"Total: 4 fights across 2 days",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Index(out, "Mata 2") > strings.Index(out, "10:00 - 10:30") {
			t.Errorf("09:00 on Mata 2 should be printed before 10:00 on Mata 1:\n%s", out)
		}
	})

	t.Run("json real", func(t *testing.T) {
		out, err := run(t, upstream.URL, "schedule", "1234-polish-open-2025",
			"--club", "academia_gorila_warszawa", "--type", "real", "--format", "json")
		if err != nil {
			t.Fatalf("schedule error = %v", err)
		}

		var got struct {
			EventID  string                       `json:"event_id"`
			Schedule map[string][]json.RawMessage `json:"schedule"`
		}
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("invalid JSON output: %v\n%s", err, out)
		}
		if got.EventID != "1234-polish-open-2025" {
			t.Errorf("event_id = %q", got.EventID)
		}
		if len(got.Schedule) != 1 || len(got.Schedule["Sobota"]) != 3 {
			t.Errorf("real schedule = %v, want only Sobota with 3 entries", got.Schedule)
		}
	})

	t.Run("ics", func(t *testing.T) {
		out, err := run(t, upstream.URL, "schedule", "1234-polish-open-2025",
			"--club", "academia_gorila_warszawa", "--format", "ics")
		if err != nil {
			t.Fatalf("schedule error = %v", err)
		}
		if got := strings.Count(out, "BEGIN:VEVENT"); got != 4 {
			t.Errorf("BEGIN:VEVENT count = %d, want 4", got)
		}
	})

	t.Run("no club members", func(t *testing.T) {
		out, err := run(t, upstream.URL, "schedule", "1234-polish-open-2025", "--club", "academia_gorila_bielsko_biala")
		if !errors.Is(err, errEmptySchedule) {
			t.Errorf("schedule error = %v, want errEmptySchedule", err)
		}
		if !strings.Contains(out, "Nie znaleziono zawodników tego klubu w tym turnieju") {
			t.Errorf("output should carry the message, got:\n%s", out)
		}
	})

	t.Run("event not found", func(t *testing.T) {
		_, err := run(t, upstream.URL, "schedule", "9999-missing", "--club", "academia_gorila_warszawa")
		if err == nil || !strings.Contains(err.Error(), "Nie znaleziono turnieju") {
			t.Errorf("schedule error = %v, want event not found", err)
		}
	})

	t.Run("unknown club", func(t *testing.T) {
		_, err := run(t, upstream.URL, "schedule", "1234", "--club", "nope")
		if err == nil || !strings.Contains(err.Error(), "unknown club") {
			t.Errorf("schedule error = %v, want unknown club", err)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := run(t, upstream.URL, "schedule", "1234", "--club", "academia_gorila_warszawa", "--format", "xml")
		if err == nil || !strings.Contains(err.Error(), "invalid format") {
			t.Errorf("schedule error = %v, want invalid format", err)
		}
	})
}

func TestTournamentsCommand(t *testing.T) {
	upstream := newFixtureUpstream(t)

	out, err := run(t, upstream.URL, "tournaments", "--sort", "name")
	if err != nil {
		t.Fatalf("tournaments error = %v", err)
	}

	if !strings.Contains(out, "Active (3):") || !strings.Contains(out, "Archived (3):") {
		t.Errorf("unexpected output:\n%s", out)
	}
	gorila := strings.Index(out, "Gorila Kids Cup")
	polish := strings.Index(out, "Polish Open 2025")
	if gorila < 0 || polish < 0 || gorila > polish {
		t.Errorf("--sort name should list Gorila Kids Cup before Polish Open:\n%s", out)
	}
}

func TestClubsCommand(t *testing.T) {
	out, err := run(t, "http://unused", "clubs", "--format", "json")
	if err != nil {
		t.Fatalf("clubs error = %v", err)
	}

	var got struct {
		Clubs []map[string]string `json:"clubs"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(got.Clubs) != 3 || got.Clubs[0]["id"] != "academia_gorila_warszawa" {
		t.Errorf("clubs = %v", got.Clubs)
	}
	if _, leaked := got.Clubs[0]["name"]; leaked {
		t.Error("canonical name should not be part of the output")
	}
}

func TestAnnounceCommand_DryRun(t *testing.T) {
	upstream := newFixtureUpstream(t)

	out, err := run(t, upstream.URL, "announce", "1234-polish-open-2025", "--club", "academia_gorila_warszawa")
	if err != nil {
		t.Fatalf("announce error = %v", err)
	}

	for _, want := range []string{
		"--- Message 1/2 ---",
		"🥋 Academia Gorila (Warszawa) | Sobota",
		"09:00  Jan Kowalski (Men -70kg, Mata 2)",
		"--- Message 2/2 ---",
		"23:30  Adam Zieliński (Masters 2 -82kg, Mata 1)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAnnounceCommand_InvalidChannel(t *testing.T) {
	_, err := run(t, "http://unused", "announce", "1234", "--club", "academia_gorila_warszawa", "--channel", "fax")
	if err == nil || !strings.Contains(err.Error(), "invalid channel") {
		t.Errorf("announce error = %v, want invalid channel", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		raw     string
		want    OutputFormat
		wantErr bool
	}{
		{"text", FormatText, false},
		{" JSON ", FormatJSON, false},
		{"ics", FormatICS, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseFormat(tt.raw, FormatText, FormatJSON, FormatICS)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFormat(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseFormat(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}

	if _, err := parseFormat("ics", FormatText, FormatJSON); err == nil {
		t.Error("parseFormat() should reject formats the command does not allow")
	}
}
