package panelclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"

	apperrors "ptero-discord-admin/internal/errors"
	"ptero-discord-admin/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestListServers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/application/servers" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		fmt.Fprint(w, `{
			"data": [
				{"attributes": {"id": 1, "name": "Lobby", "identifier": "abc123"}},
				{"attributes": {"id": 2, "name": "Survival", "identifier": "def456", "suspended": true}}
			]
		}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", testLogger())
	servers, err := client.ListServers(context.Background())
	if err != nil {
		t.Fatalf("ListServers failed: %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(servers))
	}
	if servers[0].Identifier != "abc123" || servers[1].Name != "Survival" || !servers[1].Suspended {
		t.Errorf("unexpected servers: %+v", servers)
	}
}

func TestNotFoundIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"errors": [{"code": "NotFoundHttpException", "status": "404", "detail": "The requested resource was not found."}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", testLogger())
	_, err := client.GetServer(context.Background(), "nope")

	var panelErr *apperrors.PanelAPIError
	if !errors.As(err, &panelErr) {
		t.Fatalf("expected *PanelAPIError, got %v", err)
	}
	if panelErr.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", panelErr.Status)
	}
	if panelErr.Retryable() {
		t.Error("404 must not be retryable")
	}
	if !strings.Contains(panelErr.Message, "was not found") {
		t.Errorf("detail not extracted: %q", panelErr.Message)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected exactly 1 request, got %d", got)
	}
}

func TestErrorMessageNeverLeaksAPIKey(t *testing.T) {
	const apiKey = "super-secret-key"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprintf(w, `{"errors": [{"detail": "key %s lacks permission"}]}`, apiKey)
	}))
	defer server.Close()

	client := NewClient(server.URL, apiKey, testLogger())
	err := client.TestConnection(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), apiKey) {
		t.Errorf("error message leaked the API key: %v", err)
	}
	if !strings.Contains(err.Error(), "[redacted]") {
		t.Errorf("expected redaction marker in: %v", err)
	}
}

func TestFallbackErrorMessages(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusUnauthorized, "invalid API key"},
		{http.StatusForbidden, "insufficient panel permissions"},
		{http.StatusNotFound, "resource not found"},
		{http.StatusConflict, "panel returned status 409"},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			fmt.Fprint(w, `{}`)
		}))

		client := NewClient(server.URL, "test-key", testLogger())
		err := client.TestConnection(context.Background())
		server.Close()

		var panelErr *apperrors.PanelAPIError
		if !errors.As(err, &panelErr) {
			t.Fatalf("status %d: expected *PanelAPIError, got %v", tt.status, err)
		}
		if panelErr.Message != tt.want {
			t.Errorf("status %d: message = %q, want %q", tt.status, panelErr.Message, tt.want)
		}
	}
}

func TestNetworkErrorClassifiedRetryable(t *testing.T) {
	// A closed server yields a connection error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "test-key", testLogger())
	err := client.TestConnection(context.Background())

	var panelErr *apperrors.PanelAPIError
	if !errors.As(err, &panelErr) {
		t.Fatalf("expected *PanelAPIError, got %v", err)
	}
	if panelErr.Status != 0 {
		t.Errorf("Status = %d, want 0 for network error", panelErr.Status)
	}
	if !panelErr.Retryable() {
		t.Error("network error must be retryable")
	}
}

func TestServerErrorIsRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", testLogger())
	servers, err := client.ListServers(context.Background())
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if len(servers) != 0 {
		t.Errorf("expected empty list, got %d", len(servers))
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}
}

func TestPowerActionValidatesSignal(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if body["signal"] != models.PowerRestart {
			t.Errorf("signal = %q, want restart", body["signal"])
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", testLogger())

	if err := client.PowerAction(context.Background(), "abc123", "explode"); err == nil {
		t.Error("expected error for unknown signal")
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("invalid signal must not reach the panel, got %d requests", got)
	}

	if err := client.PowerAction(context.Background(), "abc123", models.PowerRestart); err != nil {
		t.Errorf("PowerAction failed: %v", err)
	}
}

func TestCreateUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/application/users" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body models.NewPanelUser
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"attributes": {"id": 7, "username": %q, "email": %q}}`, body.Username, body.Email)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", testLogger())
	user, err := client.CreateUser(context.Background(), models.NewPanelUser{
		Username: "alice", Email: "alice@example.com",
		FirstName: "alice", LastName: "alice", Password: "longenough",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID != 7 || user.Username != "alice" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestGetResources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"attributes": {
				"current_state": "running",
				"resources": {"memory_bytes": 536870912, "cpu_absolute": 42.5, "disk_bytes": 1073741824}
			}
		}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", testLogger())
	res, err := client.GetResources(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("GetResources failed: %v", err)
	}
	if res.State != "running" || res.Resources.MemoryBytes != 536870912 {
		t.Errorf("unexpected resources: %+v", res)
	}
}

func TestBaseURLNormalization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "//") {
			t.Errorf("double slash in path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "test-key", testLogger())
	if _, err := client.ListServers(context.Background()); err != nil {
		t.Fatalf("ListServers failed: %v", err)
	}
}
