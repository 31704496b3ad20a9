package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const twilioMessagesURL = "https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json"

// SMSSink delivers reminder texts through the Twilio REST API.
type SMSSink struct {
	accountSID string
	authToken  string
	from       string
	client     *http.Client
}

func NewSMSSink(accountSID, authToken, from string, client *http.Client) *SMSSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &SMSSink{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		client:     client,
	}
}

func (s *SMSSink) Sender() string { return s.from }

type twilioResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SendSMS posts one outbound message. Twilio reports failures as a JSON body
// with code/message alongside a non-2xx status.
func (s *SMSSink) SendSMS(ctx context.Context, to, body string) error {
	form := url.Values{
		"To":   {to},
		"From": {s.from},
		"Body": {body},
	}

	endpoint := fmt.Sprintf(twilioMessagesURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var result twilioResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("parse sms response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("twilio error %d: %s", result.Code, result.Message)
	}
	return nil
}
