package sms

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Sender delivers a text message to a phone number. Handlers depend on this
// interface so tests can stub delivery.
type Sender interface {
	Send(phoneNumber, message string) error
}

// GatewaySender posts messages to an HTTP SMS gateway configured through
// SMS_GATEWAY_URL and SMS_API_KEY.
type GatewaySender struct {
	GatewayURL string
	APIKey     string
	Client     *http.Client
}

var defaultSender Sender

// DefaultSender returns the process-wide sender, building a gateway sender
// from the environment on first use. With no gateway configured it degrades
// to a no-op that reports failure, so callers log instead of crash.
func DefaultSender() Sender {
	if defaultSender != nil {
		return defaultSender
	}
	defaultSender = &GatewaySender{
		GatewayURL: os.Getenv("SMS_GATEWAY_URL"),
		APIKey:     os.Getenv("SMS_API_KEY"),
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
	return defaultSender
}

// SetDefaultSender overrides the process-wide sender.
func SetDefaultSender(s Sender) {
	defaultSender = s
}

func (g *GatewaySender) Send(phoneNumber, message string) error {
	if g.GatewayURL == "" {
		return fmt.Errorf("SMS_GATEWAY_URL not configured")
	}

	form := url.Values{}
	form.Set("to", phoneNumber)
	form.Set("message", message)

	req, err := http.NewRequest(http.MethodPost, g.GatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if g.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// GenerateResetCode returns a 6-digit numeric code.
func GenerateResetCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return fmt.Sprintf("%06d", time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("%06d", n.Int64())
}
