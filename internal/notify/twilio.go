package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mr1hm/go-report-alerts/internal/fault"
)

// TwilioClient submits messages through the Twilio Messages API.
type TwilioClient struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
}

func NewTwilioClient(accountSID, authToken, fromNumber string, timeout time.Duration) *TwilioClient {
	return &TwilioClient{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    "https://api.twilio.com",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *TwilioClient) WithBaseURL(u string) *TwilioClient {
	c.baseURL = u
	return c
}

// SendSMS submits one message. to must already be in E.164-like form.
func (c *TwilioClient) SendSMS(ctx context.Context, to, body string) error {
	form := url.Values{
		"To":   {to},
		"From": {c.fromNumber},
		"Body": {body},
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", fault.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: message request: %v", fault.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Twilio error bodies carry a message field worth surfacing.
		var apiErr struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%w: status %d: %s", fault.ErrUpstreamUnavailable, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("%w: unexpected status code: %d - status: %s", fault.ErrUpstreamUnavailable, resp.StatusCode, resp.Status)
	}

	return nil
}
