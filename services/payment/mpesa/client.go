package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"havenstay/config"

	"github.com/go-redis/redis/v8"
)

const (
	tokenPath     = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath   = "/mpesa/stkpush/v1/processrequest"
	stkQueryPath  = "/mpesa/stkpushquery/v1/query"
	tokenCacheKey = "mpesa:access_token"

	timestampLayout = "20060102150405"
)

// Client speaks the Daraja mobile money protocol: OAuth bearer token, STK
// push, and status query. Bearer tokens are cached in redis until shortly
// before expiry.
type Client struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string

	HTTPClient *http.Client
	Cache      *redis.Client
}

// NewClientFromConfig builds a Client from the loaded application config.
func NewClientFromConfig(cache *redis.Client) *Client {
	cfg := config.AppConfig
	return &Client{
		BaseURL:        cfg.MpesaBaseURL,
		ConsumerKey:    cfg.MpesaConsumerKey,
		ConsumerSecret: cfg.MpesaConsumerSecret,
		Shortcode:      cfg.MpesaShortcode,
		Passkey:        cfg.MpesaPasskey,
		CallbackURL:    cfg.MpesaCallbackURL,
		HTTPClient:     &http.Client{Timeout: 30 * time.Second},
		Cache:          cache,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// AccessToken returns a valid bearer token, fetching a fresh one from the
// OAuth endpoint when the cached token is gone.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.Cache != nil {
		if token, err := c.Cache.Get(ctx, tokenCacheKey).Result(); err == nil && token != "" {
			return token, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+tokenPath, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(c.ConsumerKey, c.ConsumerSecret)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty token")
	}

	if c.Cache != nil {
		ttl := 50 * time.Minute
		if secs, err := strconv.Atoi(tr.ExpiresIn); err == nil && secs > 120 {
			// Refresh a minute early so a token never expires mid-request.
			ttl = time.Duration(secs-60) * time.Second
		}
		c.Cache.Set(ctx, tokenCacheKey, tr.AccessToken, ttl)
	}
	return tr.AccessToken, nil
}

// password builds the push credential: base64(shortcode + passkey + timestamp).
func (c *Client) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(c.Shortcode + c.Passkey + timestamp))
}

// postJSON sends an authenticated JSON request to a Daraja endpoint.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
