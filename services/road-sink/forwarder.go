package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Forwarder posílá normalizovaná data dál. Výsledek volající jen zaloguje,
// na odpověď klientovi nemá vliv.
type Forwarder interface {
	Forward(ctx context.Context, payload NormalizedPayload) error
}

type ForwardErrorKind int

const (
	ForwardEncode           ForwardErrorKind = iota // payload nejde serializovat
	ForwardNetwork                                  // request se vůbec nepodařilo odeslat
	ForwardUnexpectedStatus                         // collector odpověděl jinak než 201
	ForwardPublish                                  // chyba MQTT publikace
)

func (k ForwardErrorKind) String() string {
	switch k {
	case ForwardEncode:
		return "encode"
	case ForwardNetwork:
		return "network"
	case ForwardUnexpectedStatus:
		return "unexpected_status"
	case ForwardPublish:
		return "publish"
	default:
		return "unknown"
	}
}

// ForwardError popisuje, proč forward selhal.
type ForwardError struct {
	Kind       ForwardErrorKind
	StatusCode int    // jen u ForwardUnexpectedStatus
	Body       string // začátek odpovědi collectoru, pro log
	Err        error
}

func (e *ForwardError) Error() string {
	switch {
	case e.Kind == ForwardUnexpectedStatus:
		return fmt.Sprintf("forward: collector vrátil status %d: %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("forward (%s): %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("forward (%s) selhal", e.Kind)
	}
}

func (e *ForwardError) Unwrap() error { return e.Err }

// CollectorClient zapouzdřuje HTTP volání na vzdálené collector API.
type CollectorClient struct {
	URL        string
	httpClient *http.Client
}

// NewCollectorClient vytvoří klienta. Timeout 0 znamená bez limitu.
func NewCollectorClient(url string, timeout time.Duration) *CollectorClient {
	return &CollectorClient{
		URL: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Forward pošle payload jako JSON POST. Úspěch je pouze 201 Created.
// Žádné opakování - co neprojde napoprvé, jen skončí v logu.
func (c *CollectorClient) Forward(ctx context.Context, payload NormalizedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &ForwardError{Kind: ForwardEncode, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return &ForwardError{Kind: ForwardNetwork, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ForwardError{Kind: ForwardNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &ForwardError{
			Kind:       ForwardUnexpectedStatus,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	// Zbytek těla dočteme, aby se spojení mohlo vrátit do poolu.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
