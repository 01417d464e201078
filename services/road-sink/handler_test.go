package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoadSensorGPSReading(t *testing.T) {
	s := setupSink(t, nil)

	w := s.post(`{"timestamp":"2024-01-01T00:00:00.000Z","gps":{"latitude":1.0,"longitude":2.0,"accuracy":5.0}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"received"}`, w.Body.String())

	calls := s.collector.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, NormalizedPayload{
		Timestamp:   1704067200,
		LocationLat: ptr(1.0),
		LocationLon: ptr(2.0),
		LocationAcc: ptr(5.0),
	}, calls[0])

	assert.Equal(t, []string{"2024-01-01T00:00:00.000Z.json"}, listDir(t, s.cfg.DataDir))
	assert.Empty(t, listDir(t, s.cfg.ImageDir))
}

func TestRoadSensorMalformedJSON(t *testing.T) {
	s := setupSink(t, nil)

	w := s.post("not-json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Invalid request. JSON data expected."}`, w.Body.String())
	assert.Empty(t, s.collector.calls())
	assert.Empty(t, listDir(t, s.cfg.DataDir))
	assert.Empty(t, listDir(t, s.cfg.ImageDir))
}

func TestRoadSensorRejectsNonJSONContentType(t *testing.T) {
	s := setupSink(t, nil)

	w := s.postWithType(`{"timestamp":"2024-01-01T00:00:00.000Z"}`, "text/plain")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Invalid request. JSON data expected."}`, w.Body.String())
	assert.Empty(t, s.collector.calls())
	assert.Empty(t, listDir(t, s.cfg.DataDir))
}

func TestRoadSensorAcceptsJSONContentTypeVariants(t *testing.T) {
	for _, ct := range []string{"application/json; charset=utf-8", "application/vnd.sensor+json"} {
		t.Run(ct, func(t *testing.T) {
			s := setupSink(t, nil)
			w := s.postWithType(`{"timestamp":"2024-01-01T00:00:00.000Z"}`, ct)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestRoadSensorNonObjectBody(t *testing.T) {
	for _, body := range []string{`[1,2,3]`, `"text"`, `null`, `42`} {
		t.Run(body, func(t *testing.T) {
			s := setupSink(t, nil)

			w := s.post(body)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"message":"Error processing data"}`, w.Body.String())
			assert.Empty(t, s.collector.calls())
			assert.Empty(t, listDir(t, s.cfg.DataDir))
		})
	}
}

func TestRoadSensorWrongFieldTypesStillReceived(t *testing.T) {
	s := setupSink(t, nil)

	w := s.post(`{"timestamp":"2024-01-01T00:00:00.000Z","gps":{"latitude":"1.0","longitude":2.0},"orientation":{"alpha":true}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"received"}`, w.Body.String())
	assert.Equal(t, []string{"2024-01-01T00:00:00.000Z.json"}, listDir(t, s.cfg.DataDir))

	calls := s.collector.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, NormalizedPayload{Timestamp: 1704067200, LocationLon: ptr(2.0)}, calls[0])
}

func TestRoadSensorWrongNestedObjectType(t *testing.T) {
	s := setupSink(t, nil)

	w := s.post(`{"timestamp":"2024-01-01T00:00:00.000Z","gps":"north","motion":[1,2]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	calls := s.collector.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, NormalizedPayload{Timestamp: 1704067200}, calls[0])
}

func TestRoadSensorNonStringTimestamp(t *testing.T) {
	s := setupSink(t, nil)

	w := s.post(`{"timestamp":42,"gps":{"latitude":1.0}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"received"}`, w.Body.String())
	assert.Equal(t, []string{"42.json"}, listDir(t, s.cfg.DataDir))
	assert.Empty(t, s.collector.calls())
}

func TestRoadSensorNonStringImage(t *testing.T) {
	s := setupSink(t, nil)

	w := s.post(`{"timestamp":"2024-01-01T00:00:00.000Z","image":123}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Failed to save image"}`, w.Body.String())
	assert.Equal(t, []string{"2024-01-01T00:00:00.000Z.json"}, listDir(t, s.cfg.DataDir))
	assert.Empty(t, listDir(t, s.cfg.ImageDir))
}

func TestRoadSensorWithoutImageWritesNoImage(t *testing.T) {
	bodies := []string{
		`{"timestamp":"2024-05-01T10:00:00.5Z"}`,
		`{"timestamp":"2024-05-01T10:00:01.5Z","image":""}`,
		`{"timestamp":"2024-05-01T10:00:02.5Z","image":null,"orientation":{"alpha":1}}`,
	}
	s := setupSink(t, nil)
	for _, body := range bodies {
		w := s.post(body)
		assert.Equal(t, http.StatusOK, w.Code, body)
	}
	assert.Empty(t, listDir(t, s.cfg.ImageDir))
	assert.Len(t, listDir(t, s.cfg.DataDir), 3)
}

func TestRoadSensorImageRoundTrip(t *testing.T) {
	s := setupSink(t, nil)
	raw := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0xff, 0x10, 0x7f}
	encoded := base64.StdEncoding.EncodeToString(raw)

	w := s.post(fmt.Sprintf(`{"timestamp":"2024-01-01T00:00:00.000Z","image":%q}`, encoded))
	require.Equal(t, http.StatusOK, w.Code)

	written, err := os.ReadFile(filepath.Join(s.cfg.ImageDir, "2024-01-01T00:00:00.000Z.png"))
	require.NoError(t, err)
	assert.Equal(t, raw, written)
	assert.Equal(t, encoded, base64.StdEncoding.EncodeToString(written))
}

func TestRoadSensorInvalidImage(t *testing.T) {
	s := setupSink(t, nil)

	w := s.post(`{"timestamp":"2024-01-01T00:00:00.000Z","image":"***not base64***"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Failed to save image"}`, w.Body.String())
	// Snímek se nemaže a forward už proběhl.
	assert.Equal(t, []string{"2024-01-01T00:00:00.000Z.json"}, listDir(t, s.cfg.DataDir))
	assert.Len(t, s.collector.calls(), 1)
	assert.Empty(t, listDir(t, s.cfg.ImageDir))
}

func TestRoadSensorImageStorageDisabled(t *testing.T) {
	s := setupSink(t, func(cfg *Config) { cfg.StoreImages = false })
	encoded := base64.StdEncoding.EncodeToString([]byte("png"))

	w := s.post(fmt.Sprintf(`{"timestamp":"2024-01-01T00:00:00.000Z","image":%q}`, encoded))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, listDir(t, s.cfg.ImageDir))
}

func TestRoadSensorJSONStorageDisabled(t *testing.T) {
	s := setupSink(t, func(cfg *Config) { cfg.StoreJSON = false })

	w := s.post(`{"timestamp":"2024-01-01T00:00:00.000Z"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, listDir(t, s.cfg.DataDir))
	assert.Len(t, s.collector.calls(), 1)
}

func TestRoadSensorJSONWriteFailure(t *testing.T) {
	s := setupSink(t, nil)
	require.NoError(t, os.RemoveAll(s.cfg.DataDir))

	w := s.post(`{"timestamp":"2024-01-01T00:00:00.000Z"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Failed to write data to file"}`, w.Body.String())
	assert.Empty(t, s.collector.calls())
}

func TestRoadSensorDefaultTimestamp(t *testing.T) {
	s := setupSink(t, nil)
	now := time.Date(2024, 3, 15, 8, 30, 0, 250000000, time.UTC)
	s.handler.now = fixedClock(now)

	w := s.post(`{"orientation":{"alpha":10,"beta":20,"gamma":30}}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"2024-03-15T08:30:00.250000Z.json"}, listDir(t, s.cfg.DataDir))

	calls := s.collector.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, now.Unix(), calls[0].Timestamp)
	assert.Equal(t, ptr(10), calls[0].OrientationAlpha)
	assert.Nil(t, calls[0].AccelerationX)
}

func TestRoadSensorDefaultTimestampIsReceiptTime(t *testing.T) {
	s := setupSink(t, nil)
	before := time.Now()

	w := s.post(`{"motion":{"acceleration":{"x":0.1}}}`)

	require.Equal(t, http.StatusOK, w.Code)
	files := listDir(t, s.cfg.DataDir)
	require.Len(t, files, 1)

	ts, err := ParseReadingTimestamp(strings.TrimSuffix(files[0], ".json"))
	require.NoError(t, err)
	assert.WithinDuration(t, before, ts, 5*time.Second)
}

func TestRoadSensorUnparseableTimestampStillReceived(t *testing.T) {
	s := setupSink(t, nil)

	w := s.post(`{"timestamp":"2024-01-01 00:00:00","gps":{"latitude":1}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"received"}`, w.Body.String())
	assert.Empty(t, s.collector.calls())
	assert.Equal(t, []string{"2024-01-01 00:00:00.json"}, listDir(t, s.cfg.DataDir))
}

func TestRoadSensorForwardFailureIsNotSurfaced(t *testing.T) {
	s := setupSink(t, nil)
	s.collector.err = &ForwardError{Kind: ForwardUnexpectedStatus, StatusCode: http.StatusBadGateway}

	w := s.post(`{"timestamp":"2024-01-01T00:00:00.000Z"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"received"}`, w.Body.String())
	assert.Len(t, s.collector.calls(), 1)
}

func TestRoadSensorRelay(t *testing.T) {
	s := setupSink(t, nil)
	relay := &recordingForwarder{err: errors.New("broker pryč")}
	s.handler.relay = relay

	w := s.post(`{"timestamp":"2024-01-01T00:00:00.000Z","gps":{"latitude":50.08}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, relay.calls(), 1)
	assert.Equal(t, s.collector.calls(), relay.calls())
}

func TestRoadSensorMethodNotAllowed(t *testing.T) {
	s := setupSink(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/sink/roadSensor", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCorsPreflight(t *testing.T) {
	s := setupSink(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/sink/roadSensor", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, s.collector.calls())
}
