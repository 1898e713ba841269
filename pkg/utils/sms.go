package utils

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Jen9x/TapRide/pkg/logger"
)

const (
	atLiveURL    = "https://api.africastalking.com/version1/messaging"
	atSandboxURL = "https://api.sandbox.africastalking.com/version1/messaging"
)

// SMSClient sends messages through Africa's Talking.
type SMSClient struct {
	username string
	apiKey   string
	senderID string
	endpoint string
	http     *http.Client
	log      logger.ILogger
}

func NewSMSClient(username, apiKey, senderID string, log logger.ILogger) *SMSClient {
	endpoint := atLiveURL
	if username == "sandbox" {
		endpoint = atSandboxURL
	}
	return &SMSClient{
		username: username,
		apiKey:   apiKey,
		senderID: senderID,
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

// WithEndpoint overrides the API URL.
func (c *SMSClient) WithEndpoint(endpoint string) *SMSClient {
	c.endpoint = endpoint
	return c
}

func (c *SMSClient) Send(ctx context.Context, message string, recipients ...string) error {
	if c.username == "" {
		return fmt.Errorf("africa's talking username not set")
	}
	if c.apiKey == "" {
		return fmt.Errorf("africa's talking API key not set")
	}

	data := url.Values{}
	data.Set("username", c.username)
	data.Set("to", strings.Join(recipients, ","))
	data.Set("message", message)
	if c.senderID != "" {
		data.Set("from", c.senderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send SMS: status code %d", resp.StatusCode)
	}
	c.log.Debug("sms sent", logger.Int("recipients", len(recipients)))
	return nil
}

func (c *SMSClient) SendOTP(ctx context.Context, phone, code string, ttl time.Duration) error {
	msg := fmt.Sprintf("Your TapRide code is %s. It expires in %d minutes.", code, int(ttl.Minutes()))
	return c.Send(ctx, msg, phone)
}
