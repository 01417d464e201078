package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
)

// recordingForwarder si pamatuje všechny payloady a vrací nastavenou chybu.
type recordingForwarder struct {
	mu       sync.Mutex
	payloads []NormalizedPayload
	err      error
}

func (f *recordingForwarder) Forward(_ context.Context, payload NormalizedPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return f.err
}

func (f *recordingForwarder) calls() []NormalizedPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]NormalizedPayload(nil), f.payloads...)
}

type testSink struct {
	cfg       Config
	handler   *IngestHandler
	router    http.Handler
	collector *recordingForwarder
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupSink postaví handler nad dočasnými adresáři. configure může konfiguraci upravit.
func setupSink(t *testing.T, configure func(*Config)) *testSink {
	t.Helper()
	root := t.TempDir()
	cfg := Config{
		StoreJSON:   true,
		StoreImages: true,
		DataDir:     filepath.Join(root, "data"),
		ImageDir:    filepath.Join(root, "images"),
	}
	if configure != nil {
		configure(&cfg)
	}

	store := NewLocalStore(cfg)
	store.EnsureDirs(discardLogger())

	collector := &recordingForwarder{}
	h := NewIngestHandler(cfg, store, collector, nil, discardLogger())

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	return &testSink{cfg: cfg, handler: h, router: CorsMiddleware(mux), collector: collector}
}

func (s *testSink) post(body string) *httptest.ResponseRecorder {
	return s.postWithType(body, "application/json")
}

func (s *testSink) postWithType(body, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/sink/roadSensor", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func ptr(f float64) *float64 { return &f }

// fakeToken je už dokončený MQTT token.
type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	done := make(chan struct{})
	close(done)
	return &fakeToken{err: err, done: done}
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type publishedMessage struct {
	topic   string
	payload []byte
}

// fakeMQTTClient implementuje jen metody, které sink volá. Ostatní by panikovaly.
type fakeMQTTClient struct {
	mqtt.Client
	mu         sync.Mutex
	connected  bool
	publishErr error
	published  []publishedMessage
}

func (c *fakeMQTTClient) IsConnectionOpen() bool { return c.connected }

func (c *fakeMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, publishedMessage{topic: topic, payload: payload.([]byte)})
	return newFakeToken(c.publishErr)
}
