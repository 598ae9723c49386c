package vagaro

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

// ErrNotFound is returned when the CRM has no record for the customer id.
var ErrNotFound = errors.New("vagaro: customer not found")

// Customer is the slice of the CRM profile the correlation engine needs.
type Customer struct {
	FirstName   string
	LastName    string
	MobilePhone string
}

// Client resolves customer ids against the Vagaro CRM. Carries its own
// cached bearer token, separate from the lock vendor's.
type Client struct {
	cfg  config.VagaroConfig
	http *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg config.VagaroConfig) *Client {
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
		"clientId":        c.cfg.ClientID,
		"clientSecretKey": c.cfg.ClientSecret,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/merchants/generate-access-token", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("vagaro: token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("vagaro: token request: status %d: %s", resp.StatusCode, detail)
	}

	var out struct {
		Data struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int    `json:"expires_in"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("vagaro: decode token response: %w", err)
	}

	expiresIn := out.Data.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}

	c.token = out.Data.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn-60) * time.Second)
	return c.token, nil
}

// LookupCustomer fetches name and mobile phone for a CRM customer id.
func (c *Client) LookupCustomer(ctx context.Context, customerID string) (Customer, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return Customer{}, err
	}

	body, _ := json.Marshal(map[string]string{
		"businessId": c.cfg.BusinessID,
		"customerId": customerID,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/customers", bytes.NewReader(body))
	if err != nil {
		return Customer{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("accessToken", token)

	resp, err := c.http.Do(req)
	if err != nil {
		return Customer{}, fmt.Errorf("vagaro: customer lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Customer{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return Customer{}, fmt.Errorf("vagaro: customer lookup: status %d: %s", resp.StatusCode, detail)
	}

	var out struct {
		Data struct {
			CustomerFirstName string `json:"customerFirstName"`
			CustomerLastName  string `json:"customerLastName"`
			MobilePhone       string `json:"mobilePhone"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Customer{}, fmt.Errorf("vagaro: decode customer response: %w", err)
	}

	return Customer{
		FirstName:   out.Data.CustomerFirstName,
		LastName:    out.Data.CustomerLastName,
		MobilePhone: out.Data.MobilePhone,
	}, nil
}
