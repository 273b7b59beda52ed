package regime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"TrendSentry/internal/model"
)

// ErrAdvisoryUnavailable covers timeouts, transport errors, missing
// credentials, and malformed payloads from the advisory. The cache is the
// only caller and never propagates it upward.
var ErrAdvisoryUnavailable = errors.New("regime advisory unavailable")

// AdvisoryContext is what the advisory gets to reason over.
type AdvisoryContext struct {
	Pair  string    `json:"pair"`
	Price float64   `json:"price"`
	Date  time.Time `json:"date"`
}

// Advisory classifies the current market regime. Treated as a
// possibly-unavailable, possibly-slow, rate-limited dependency.
type Advisory interface {
	Classify(ctx context.Context, actx AdvisoryContext) (model.RegimeClassification, error)
}

// HTTPAdvisory talks to a regime advisory REST service.
type HTTPAdvisory struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPAdvisory creates the client with optional proxy support.
func NewHTTPAdvisory(baseURL, apiKey, proxyURL string, timeout time.Duration) *HTTPAdvisory {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPAdvisory{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// advisoryResponse is the expected JSON shape from the advisory API.
type advisoryResponse struct {
	Regime         string  `json:"regime"`
	BuyThreshold   float64 `json:"buy_threshold"`
	SellThreshold  float64 `json:"sell_threshold"`
	CapitalPercent float64 `json:"capital_percent"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
}

func (a *HTTPAdvisory) Classify(ctx context.Context, actx AdvisoryContext) (model.RegimeClassification, error) {
	if a.APIKey == "" {
		return model.RegimeClassification{}, fmt.Errorf("%w: no API key configured", ErrAdvisoryUnavailable)
	}

	endpoint := fmt.Sprintf("%s/api/v1/regime?pair=%s&price=%.2f&date=%s",
		a.BaseURL, url.QueryEscape(actx.Pair), actx.Price, actx.Date.Format("2006-01-02"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.RegimeClassification{}, fmt.Errorf("%w: build request: %v", ErrAdvisoryUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+a.APIKey)

	resp, err := a.Client.Do(req)
	if err != nil {
		return model.RegimeClassification{}, fmt.Errorf("%w: %v", ErrAdvisoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return model.RegimeClassification{}, fmt.Errorf("%w: status %d, body: %s",
			ErrAdvisoryUnavailable, resp.StatusCode, string(body))
	}

	var payload advisoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.RegimeClassification{}, fmt.Errorf("%w: decode payload: %v", ErrAdvisoryUnavailable, err)
	}

	c := model.RegimeClassification{
		Regime:         model.Regime(payload.Regime),
		BuyThreshold:   payload.BuyThreshold,
		SellThreshold:  payload.SellThreshold,
		CapitalPercent: payload.CapitalPercent,
		Confidence:     payload.Confidence,
		Reasoning:      payload.Reasoning,
	}
	if !c.Regime.Valid() {
		return model.RegimeClassification{}, fmt.Errorf("%w: unknown regime %q", ErrAdvisoryUnavailable, payload.Regime)
	}
	return c, nil
}
