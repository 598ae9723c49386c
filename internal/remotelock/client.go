package remotelock

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bstrong/door-access/pkg/config"
)

const acceptHeader = "application/vnd.lockstate+json; version=1"

// ErrPINInUse maps the vendor's 422 response on a PIN rewrite: the
// requested code collides with another credential on the account.
var ErrPINInUse = errors.New("remotelock: pin already in use")

// GuestCredential is a vendor-issued, time-bounded access credential.
type GuestCredential struct {
	ID  string
	PIN string
}

// Client talks to the lock vendor's REST API. The bearer token is cached
// for the process lifetime and refreshed shortly before expiry; a benign
// race between concurrent refreshes is acceptable (idempotent grant).
type Client struct {
	cfg  config.RemoteLockConfig
	http *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg config.RemoteLockConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body, _ := json.Marshal(map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     c.cfg.ClientID,
		"client_secret": c.cfg.ClientSecret,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("remotelock: token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("remotelock: token request: status %d: %s", resp.StatusCode, detail)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("remotelock: decode token response: %w", err)
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn-60) * time.Second)
	return c.token, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) (*http.Response, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Content-Type", "application/json")

	return c.http.Do(req)
}

// CreateGuest mints an access-guest credential with a generated PIN for
// the given validity window.
func (c *Client) CreateGuest(ctx context.Context, name string, startsAt, endsAt time.Time) (GuestCredential, error) {
	payload := map[string]interface{}{
		"type": "access_guest",
		"attributes": map[string]interface{}{
			"name":         name,
			"generate_pin": true,
			"starts_at":    startsAt.Format(time.RFC3339),
			"ends_at":      endsAt.Format(time.RFC3339),
		},
	}

	resp, err := c.do(ctx, http.MethodPost, "/access_persons", payload)
	if err != nil {
		return GuestCredential{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(resp.Body)
		return GuestCredential{}, fmt.Errorf("remotelock: create guest: status %d: %s", resp.StatusCode, detail)
	}

	var out struct {
		Data struct {
			ID         string `json:"id"`
			Attributes struct {
				PIN string `json:"pin"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return GuestCredential{}, fmt.Errorf("remotelock: decode guest response: %w", err)
	}

	return GuestCredential{ID: out.Data.ID, PIN: out.Data.Attributes.PIN}, nil
}

// GrantAccess attaches the guest credential to the configured lock under
// the facility's access schedule.
func (c *Client) GrantAccess(ctx context.Context, guestID string) error {
	payload := map[string]interface{}{
		"attributes": map[string]interface{}{
			"accessible_id":      c.cfg.LockID,
			"accessible_type":    "lock",
			"access_schedule_id": c.cfg.ScheduleID,
		},
	}

	resp, err := c.do(ctx, http.MethodPost, "/access_persons/"+guestID+"/accesses", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("remotelock: grant access: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// UpdatePIN rewrites the credential's PIN. Returns ErrPINInUse on the
// vendor's 422 collision response.
func (c *Client) UpdatePIN(ctx context.Context, guestID, pin string) error {
	payload := map[string]interface{}{
		"attributes": map[string]string{"pin": pin},
	}

	resp, err := c.do(ctx, http.MethodPut, "/access_persons/"+guestID, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return ErrPINInUse
	default:
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("remotelock: update pin: status %d: %s", resp.StatusCode, detail)
	}
}
