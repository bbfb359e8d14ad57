package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Gateway implements port.Transport against the external send API:
// POST {base}/v1/send/{attemptID} with a bearer token and a JSON body of
// id, phone and text. The response status code is the transport status
// the delivery loop records; only a failure to obtain any response at
// all surfaces as an error.
//
// A token-bucket limiter caps the request rate so large mailings do not
// hammer the provider.
type Gateway struct {
	client  *http.Client
	baseURL string
	token   string
	limiter *rate.Limiter
}

// NewGateway builds a gateway client. ratePerSec <= 0 disables limiting.
func NewGateway(baseURL, token string, timeout time.Duration, ratePerSec int) *Gateway {
	limit := rate.Inf
	burst := 1
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
		burst = ratePerSec
	}
	return &Gateway{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		token:   token,
		limiter: rate.NewLimiter(limit, burst),
	}
}

type sendRequest struct {
	ID    int64  `json:"id"`
	Phone int64  `json:"phone"`
	Text  string `json:"text"`
}

// Send submits one message and returns the gateway's status code.
func (g *Gateway) Send(ctx context.Context, attemptID, phone int64, text string) (int, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	body, err := json.Marshal(sendRequest{ID: attemptID, Phone: phone, Text: text})
	if err != nil {
		return 0, err
	}
	url := fmt.Sprintf("%s/v1/send/%d", g.baseURL, attemptID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send attempt %d: %w", attemptID, err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
