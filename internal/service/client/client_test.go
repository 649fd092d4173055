package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"

	api "github.com/oshokin/alarm-clock/internal/api/http/alarm"
	"github.com/oshokin/alarm-clock/internal/audio"
	"github.com/oshokin/alarm-clock/internal/clock"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/service/alarms"
	"github.com/oshokin/alarm-clock/internal/service/notification"
)

// fakeProcess implements ps.Process.
type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int { return p.pid }

func (p fakeProcess) PPid() int { return 1 }

func (p fakeProcess) Executable() string { return p.executable }

// stubAPI serves fixed replies for the routes the commands use.
func stubAPI(t *testing.T) *httptest.Server {
	t.Helper()

	snoozed := time.Date(2026, 10, 19, 8, 5, 47, 0, time.Local)
	list := []api.AlarmView{
		{
			Alarm:       domain.Alarm{ID: "a1", Time: "07:30", Enabled: true, Label: "Gym", DifficultyLevel: 12},
			DisplayTime: "7:30 AM",
		},
		{
			Alarm:        domain.Alarm{ID: "a2", Time: "08:00", SoundType: "alarm2"},
			DisplayTime:  "8:00 AM",
			SnoozedUntil: &snoozed,
		},
	}

	writeJSON := func(w http.ResponseWriter, status int, payload any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/alarms", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, list)
	})
	mux.HandleFunc("POST /api/alarms", func(w http.ResponseWriter, r *http.Request) {
		var input alarms.NewAlarm
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Time == "bad" {
			writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Code: api.CodeInvalidRequest, Message: "bad time"})
			return
		}

		writeJSON(w, http.StatusCreated, api.AlarmView{
			Alarm:       domain.Alarm{ID: "a3", Time: input.Time, Enabled: true, Label: input.Label},
			DisplayTime: domain.FormatTime12h(input.Time),
		})
	})
	mux.HandleFunc("DELETE /api/alarms/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/alarms/{id}/toggle", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "a1" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		toggled := list[0]
		toggled.Enabled = false
		writeJSON(w, http.StatusOK, toggled)
	})
	mux.HandleFunc("GET /api/sounds", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, api.SoundsResponse{
			Sounds:     audio.DefaultCatalog(".").List(),
			Previewing: "alarm3",
		})
	})
	mux.HandleFunc("POST /api/sounds/{id}/preview", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /api/sounds/preview", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/clock", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, clock.Read(time.Date(2026, 10, 19, 8, 0, 12, 0, time.Local)))
	})
	mux.HandleFunc("GET /api/notification", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, notification.View{
			Phase:       notification.PhaseResolved,
			Alarm:       &list[1].Alarm,
			DisplayTime: "8:00 AM",
			SolvedIn:    "00:47",
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func testOptions(t *testing.T, address string, out *bytes.Buffer) *Options {
	t.Helper()

	return &Options{
		ConfigPath:    filepath.Join(t.TempDir(), "missing.yaml"),
		ServerAddress: address,
		Out:           out,
	}
}

// closedAddress returns a loopback address nothing listens on.
func closedAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// TestDialAddress maps wildcard listen hosts to loopback.
func TestDialAddress(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		":8080":            "127.0.0.1:8080",
		"0.0.0.0:8080":     "127.0.0.1:8080",
		"[::]:8080":        "127.0.0.1:8080",
		"192.168.1.5:9000": "192.168.1.5:9000",
		"not an address":   "not an address",
	}
	for in, want := range cases {
		require.Equal(t, want, DialAddress(in), in)
	}
}

// TestListAlarms renders the alarm table.
func TestListAlarms(t *testing.T) {
	t.Parallel()

	server := stubAPI(t)

	var out bytes.Buffer
	require.NoError(t, ListAlarms(context.Background(), testOptions(t, server.URL, &out)))

	text := out.String()
	require.Contains(t, text, "SNOOZED UNTIL")
	require.Contains(t, text, "7:30 AM")
	require.Contains(t, text, "Gym")
	require.Contains(t, text, "12")
	require.Contains(t, text, "beep")
	require.Contains(t, text, "alarm2")
	require.Contains(t, text, "08:05:47")
}

// TestAlarmCommands covers add, toggle and remove.
func TestAlarmCommands(t *testing.T) {
	t.Parallel()

	server := stubAPI(t)
	ctx := context.Background()

	var out bytes.Buffer

	opts := testOptions(t, server.URL, &out)

	require.NoError(t, AddAlarm(ctx, opts, alarms.NewAlarm{Time: "06:45", Label: "Run"}))
	require.Contains(t, out.String(), "6:45 AM")

	err := AddAlarm(ctx, opts, alarms.NewAlarm{Time: "bad"})
	require.Error(t, err)
	require.Contains(t, err.Error(), api.CodeInvalidRequest)

	out.Reset()
	require.NoError(t, ToggleAlarm(ctx, opts, "a1"))
	require.Contains(t, out.String(), "off")

	out.Reset()
	require.NoError(t, ToggleAlarm(ctx, opts, "missing"))
	require.Empty(t, out.String())

	require.NoError(t, RemoveAlarm(ctx, opts, "a1"))
}

// TestSoundCommands covers list, preview and stop.
func TestSoundCommands(t *testing.T) {
	t.Parallel()

	server := stubAPI(t)
	ctx := context.Background()

	var out bytes.Buffer

	opts := testOptions(t, server.URL, &out)

	require.NoError(t, ListSounds(ctx, opts))
	require.Contains(t, out.String(), "Alarm 1")
	require.Contains(t, out.String(), "playing")

	require.NoError(t, PreviewSound(ctx, opts, "alarm1"))
	require.NoError(t, StopPreview(ctx, opts))
}

// TestStatus prints clock, phase and alarm counts.
func TestStatus(t *testing.T) {
	t.Parallel()

	server := stubAPI(t)

	var out bytes.Buffer
	require.NoError(t, Status(context.Background(), testOptions(t, server.URL, &out)))

	text := out.String()
	require.Contains(t, text, "8:00:12 AM")
	require.Contains(t, text, "2 (1 enabled)")
	require.Contains(t, text, "resolved")
	require.Contains(t, text, "a2 8:00 AM")
	require.Contains(t, text, "in 00:47")
}

// TestStatus_Unreachable reports local server processes.
func TestStatus_Unreachable(t *testing.T) {
	t.Parallel()

	lister := func() ([]ps.Process, error) {
		return []ps.Process{
			fakeProcess{pid: os.Getpid(), executable: "alarm-clock"},
			fakeProcess{pid: 4242, executable: "alarm-clock"},
			fakeProcess{pid: 4343, executable: "bash"},
		}, nil
	}

	var out bytes.Buffer

	err := runStatus(context.Background(), testOptions(t, closedAddress(t), &out), lister)
	require.ErrorIs(t, err, ErrServerUnavailable)
	require.Contains(t, out.String(), "[4242]")

	out.Reset()

	empty := func() ([]ps.Process, error) { return nil, nil }

	err = runStatus(context.Background(), testOptions(t, closedAddress(t), &out), empty)
	require.ErrorIs(t, err, ErrServerUnavailable)
	require.Contains(t, out.String(), "alarm-clock serve")
}

// TestStatus_WaitGivesUp stops retrying after the wait elapses.
func TestStatus_WaitGivesUp(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	opts := testOptions(t, closedAddress(t), &out)
	opts.Wait = 1500 * time.Millisecond

	started := time.Now()
	err := runStatus(context.Background(), opts, func() ([]ps.Process, error) {
		return nil, errors.New("no process table")
	})
	require.ErrorIs(t, err, ErrServerUnavailable)
	require.GreaterOrEqual(t, time.Since(started), opts.Wait)
}

// TestLocalServers matches the executable name with or without .exe.
func TestLocalServers(t *testing.T) {
	t.Parallel()

	pids, err := localServers(func() ([]ps.Process, error) {
		return []ps.Process{
			fakeProcess{pid: 10, executable: "alarm-clock.exe"},
			fakeProcess{pid: 11, executable: "Alarm-Clock"},
			fakeProcess{pid: 12, executable: "alarm-clockd"},
		}, nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{10, 11}, pids)

	_, err = localServers(func() ([]ps.Process, error) {
		return nil, errors.New("denied")
	})
	require.Error(t, err)
}
