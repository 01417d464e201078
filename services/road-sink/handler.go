package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Odpovědi sinku. Texty jsou součástí API, klienti na ně můžou spoléhat.
const (
	msgReceived       = "received"
	msgInvalidRequest = "Invalid request. JSON data expected."
	msgWriteFailed    = "Failed to write data to file"
	msgImageFailed    = "Failed to save image"
	msgProcessingFail = "Error processing data"
)

// SnapshotStore je lokální úložiště surových dat (implementuje LocalStore).
type SnapshotStore interface {
	SaveJSON(timestamp string, body []byte) (string, error)
	SaveImage(timestamp, encoded string) (string, error)
}

// IngestHandler obsluhuje POST /sink/roadSensor.
// Každý požadavek je nezávislý, handler nedrží žádný stav mezi požadavky.
type IngestHandler struct {
	store       SnapshotStore
	storeJSON   bool
	storeImages bool

	collector Forwarder // forward na vzdálené API
	relay     Forwarder // volitelný MQTT relay, může být nil

	logger *slog.Logger
	now    func() time.Time
}

func NewIngestHandler(cfg Config, store SnapshotStore, collector, relay Forwarder, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{
		store:       store,
		storeJSON:   cfg.StoreJSON,
		storeImages: cfg.StoreImages,
		collector:   collector,
		relay:       relay,
		logger:      logger,
		now:         time.Now,
	}
}

func (h *IngestHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /sink/roadSensor", h.handleRoadSensor)
}

// handleRoadSensor: POST /sink/roadSensor
//
// Pořadí kroků je pevné: validace, JSON snímek, normalizace + forward, obrázek.
// Už zapsaný snímek se při pozdější chybě nemaže.
func (h *IngestHandler) handleRoadSensor(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("request_id", uuid.NewString())

	// 1. Validace vstupu
	if !isJSONContentType(r.Header.Get("Content-Type")) {
		log.Warn("Invalid request. JSON data expected.", "content_type", r.Header.Get("Content-Type"))
		writeJSON(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		log.Warn("Invalid request. JSON data expected.", "error", err, "bytes", len(body))
		writeJSON(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	// Validní JSON, ale ne objekt (pole, číslo, string, null).
	reading, err := decodeReading(body)
	if err != nil {
		log.Error("Chyba při zpracování JSON dat", "error", err)
		writeJSON(w, http.StatusInternalServerError, msgProcessingFail)
		return
	}

	// 2. Timestamp: z těla, jinak čas přijetí
	// Timestamp, který není string, se použije jako název souboru a normalizace ho odmítne.
	timestamp := DefaultTimestamp(h.now())
	switch {
	case reading.Timestamp != nil:
		timestamp = *reading.Timestamp
	case reading.RawTimestamp != "":
		timestamp = reading.RawTimestamp
	}
	log = log.With("timestamp", timestamp)
	log.Info("Přijata data ze senzoru", "bytes", len(body))
	log.Debug("Obsah požadavku", "body", json.RawMessage(body))

	// 3. Snímek celého požadavku na disk
	if h.storeJSON {
		path, err := h.store.SaveJSON(timestamp, body)
		if err != nil {
			log.Error("Nepodařilo se zapsat JSON data", "error", err)
			writeJSON(w, http.StatusInternalServerError, msgWriteFailed)
			return
		}
		log.Info("JSON data uložena", "file", path)
	}

	// 4.+5. Normalizace a forward. Chyby se jen logují, klient dostane 200 i tak.
	payload, err := Normalize(reading, timestamp)
	if err != nil {
		log.Error("Normalizace selhala, forward přeskočen", "error", err)
	} else {
		h.forward(r.Context(), log, payload)
	}

	// 6. Obrázek
	if h.storeImages && reading.RawImage != "" {
		log.Error("Nepodařilo se uložit obrázek", "error", "pole image není string", "image", json.RawMessage(reading.RawImage))
		writeJSON(w, http.StatusInternalServerError, msgImageFailed)
		return
	}
	if h.storeImages && reading.Image != nil && *reading.Image != "" {
		path, err := h.store.SaveImage(timestamp, *reading.Image)
		if err != nil {
			log.Error("Nepodařilo se uložit obrázek", "error", err)
			writeJSON(w, http.StatusInternalServerError, msgImageFailed)
			return
		}
		log.Info("Obrázek uložen", "file", path)
	}

	// 7. Hotovo
	writeJSON(w, http.StatusOK, msgReceived)
}

// forward pošle payload na collector a případně do MQTT.
// Výsledek se zaloguje a zahodí.
func (h *IngestHandler) forward(ctx context.Context, log *slog.Logger, payload NormalizedPayload) {
	// Odpojení klienta nesmí forward přerušit.
	ctx = context.WithoutCancel(ctx)

	if err := h.collector.Forward(ctx, payload); err != nil {
		logForwardError(log, "collector", err)
	} else {
		log.Info("Data přeposlána do collectoru")
	}

	if h.relay == nil {
		return
	}
	if err := h.relay.Forward(ctx, payload); err != nil {
		logForwardError(log, "mqtt", err)
	} else {
		log.Debug("Data publikována do MQTT")
	}
}

func logForwardError(log *slog.Logger, target string, err error) {
	var fe *ForwardError
	if errors.As(err, &fe) {
		log.Error("Forward selhal", "target", target, "kind", fe.Kind.String(), "status", fe.StatusCode, "error", err)
		return
	}
	log.Error("Forward selhal", "target", target, "error", err)
}

// decodeReading dekóduje tělo do SensorReading. Tělo musí být JSON objekt,
// na typech jednotlivých polí nezáleží.
func decodeReading(body []byte) (SensorReading, error) {
	var reading SensorReading
	if err := reading.UnmarshalJSON(body); err != nil {
		return reading, err
	}
	return reading, nil
}

// isJSONContentType akceptuje application/json i varianty typu application/vnd.x+json.
func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if mediaType == "application/json" {
		return true
	}
	return strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")
}

func writeJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(StatusResponse{Message: message})
}

// CorsMiddleware povolí volání sinku z prohlížeče (webová aplikace na jiné doméně).
func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
