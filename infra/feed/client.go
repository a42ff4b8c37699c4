// Package feed fetches the daily occupancy dataset from the upstream
// service-import endpoint.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kilianp07/occupancy/core/model"
	"github.com/kilianp07/occupancy/infra/logger"
)

// ErrUnexpectedStatus is returned when the upstream does not answer 200 OK.
// It wraps model.ErrStatus so snapshots pick the matching banner.
var ErrUnexpectedStatus = fmt.Errorf("feed: %w", model.ErrStatus)

// DefaultURL is the occupancy endpoint of the fleet indicators API.
const DefaultURL = "https://indicadores.tfleet.com.br/api/service-import/OcupacaoHoje"

// Config defines the upstream endpoint and its credentials.
type Config struct {
	URL            string `json:"url"`
	Access         string `json:"access"`
	Token          string `json:"token"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies the default endpoint and timeout.
func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("feed url is required")
	}
	if c.Access == "" || c.Token == "" {
		return fmt.Errorf("feed access and token are required")
	}
	return nil
}

type request struct {
	Access string `json:"acesso"`
	Token  string `json:"token"`
}

// errMissingResult marks a 200 body without a usable result array.
var errMissingResult = errors.New("missing result")

type response struct {
	Result *[]model.RawRecord `json:"result"`
}

// Client posts the credentials to the endpoint and decodes the rows.
type Client struct {
	url    string
	body   request
	client *http.Client
	log    logger.Logger
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	return &Client{
		url:    cfg.URL,
		body:   request{Access: cfg.Access, Token: cfg.Token},
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:    logger.New("feed"),
	}
}

// WithHTTPClient replaces the HTTP client, keeping the receiver's settings.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

// Fetch performs one POST and returns the cleaned records. A non-200 answer
// yields ErrUnexpectedStatus; transport and decoding failures are wrapped.
func (c *Client) Fetch(ctx context.Context) ([]model.Record, error) {
	payload, err := json.Marshal(c.body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %d, body: %s", ErrUnexpectedStatus, resp.StatusCode, bytes.TrimSpace(body))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Result == nil {
		return nil, fmt.Errorf("decode response: %w", errMissingResult)
	}
	c.log.Debugf("fetched %d rows from %s", len(*out.Result), c.url)
	return model.CleanAll(*out.Result), nil
}
