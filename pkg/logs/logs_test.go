package logs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	slogmulti "github.com/samber/slog-multi"

	"github.com/willsigmon/boppa/config"
	"github.com/willsigmon/boppa/pkg/reqctx"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	h := slogmulti.Pipe(requestIDMiddleware()).Handler(slog.NewJSONHandler(&buf, nil))
	logger := slog.New(h)

	ctx := reqctx.WithRequestMeta(context.Background(), &reqctx.RequestMeta{RequestID: "req-123"})
	logger.InfoContext(ctx, "handled")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if line["request_id"] != "req-123" {
		t.Errorf("request_id = %v, want req-123", line["request_id"])
	}

	buf.Reset()
	logger.Info("no request")
	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("log without request carries request_id: %s", buf.String())
	}
}

func TestNewHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	slog.New(newHandler(&buf, "text", true, nil)).Info("hello")
	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("development text format produced JSON: %s", buf.String())
	}

	buf.Reset()
	slog.New(newHandler(&buf, "text", false, nil)).Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("non-development output is not JSON: %s", buf.String())
	}
}

func TestLokiWriter(t *testing.T) {
	var (
		got  lokiPush
		user string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loki/api/v1/push" {
			t.Errorf("path = %s", r.URL.Path)
		}
		user, _, _ = r.BasicAuth()
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("unmarshal push: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Logging.Output.Loki.Endpoint = srv.URL + "/"
	cfg.Logging.Output.Loki.Username = "grafana"
	cfg.Observability.ServiceName = "boppa"
	cfg.Server.Environment = "test"

	h := newLokiHandler(cfg, slog.LevelInfo)
	slog.New(h).Info(`quoted "value"`, "n", 1)

	if user != "grafana" {
		t.Errorf("basic auth user = %q", user)
	}
	if len(got.Streams) != 1 || got.Streams[0].Stream["service"] != "boppa" || got.Streams[0].Stream["env"] != "test" {
		t.Fatalf("streams = %+v", got.Streams)
	}
	line := got.Streams[0].Values[0][1]
	if !strings.Contains(line, `quoted \"value\"`) {
		t.Errorf("line = %s", line)
	}
}

func TestLokiWriter_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	lw := &lokiWriter{endpoint: srv.URL, client: srv.Client(), now: time.Now}
	if _, err := lw.Write([]byte("line\n")); err == nil {
		t.Error("Write() error = nil for 400 response")
	}
}
