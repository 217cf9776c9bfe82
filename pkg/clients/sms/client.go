package sms

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/autoshop/internal/config"
)

// Client exposes the SMS operations used by the application.
type Client interface {
	SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error)
}

// TwilioClient is a resty-backed implementation of Client for the Twilio
// Programmable Messaging API.
type TwilioClient struct {
	httpClient *resty.Client
	accountSID string
	fromNumber string
}

// NewClient builds a Twilio client using the provided configuration values.
func NewClient(cfg config.SMSConfig) *TwilioClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(fmt.Sprintf("%s/2010-04-01", base)).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)

	return &TwilioClient{
		httpClient: restyClient,
		accountSID: cfg.AccountSID,
		fromNumber: cfg.FromNumber,
	}
}

// SendMessageRequest represents a plain text SMS.
type SendMessageRequest struct {
	To   string
	Body string
}

// SendMessageResponse mirrors the fields of the created message resource we use.
type SendMessageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// apiError represents a Twilio REST error payload.
type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

// SendMessage queues an outbound SMS.
func (c *TwilioClient) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	if req.To == "" {
		return nil, fmt.Errorf("send sms: recipient must not be empty")
	}

	result := new(SendMessageResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":   req.To,
			"From": c.fromNumber,
			"Body": req.Body,
		}).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("Accounts/%s/Messages.json", c.accountSID))
	if err != nil {
		return nil, fmt.Errorf("send sms: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		code := resp.StatusCode()
		if apiErr.Code != 0 {
			code = apiErr.Code
		}
		return nil, fmt.Errorf("twilio api error: code=%d, message=%s", code, apiErr.Message)
	}

	return result, nil
}
