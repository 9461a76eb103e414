package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/NuralamMRH/soletradeproject-sub004/config"
	"github.com/NuralamMRH/soletradeproject-sub004/pkg/circuitbreaker"
	"github.com/NuralamMRH/soletradeproject-sub004/pkg/metrics"
)

// ErrInvalidToken means the device token fails the provider's format check.
// Detected locally, before any network call.
var ErrInvalidToken = errors.New("invalid push token format")

var tokenPattern = regexp.MustCompile(`^Expo(nent)?PushToken\[[A-Za-z0-9_-]+\]$`)

// ValidToken reports whether token matches the Expo push token format.
func ValidToken(token string) bool {
	return tokenPattern.MatchString(token)
}

// Message is the provider wire payload.
type Message struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type ticketResponse struct {
	Data struct {
		Status  string `json:"status"`
		ID      string `json:"id"`
		Message string `json:"message"`
		Details struct {
			Error string `json:"error"`
		} `json:"details"`
	} `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// ExpoClient sends push notifications through the Expo push API. Calls are
// best-effort: no synchronous retry, and the circuit breaker fails fast when
// the provider is down.
type ExpoClient struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	cb          *circuitbreaker.CircuitBreaker
	logger      *zap.Logger
}

func NewExpoClient(cfg config.PushConfig, logger *zap.Logger) *ExpoClient {
	cbConfig := circuitbreaker.Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 2,
	}

	return &ExpoClient{
		endpoint:    cfg.Endpoint,
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		cb:     circuitbreaker.NewCircuitBreaker(cbConfig),
		logger: logger,
	}
}

// Send delivers one push message. An invalid token format fails without a
// network call.
func (c *ExpoClient) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if !ValidToken(token) {
		metrics.RecordPushSendLatency("invalid_token", 0)
		return ErrInvalidToken
	}

	msg := Message{
		To:    token,
		Title: title,
		Body:  body,
		Data:  data,
	}

	return c.cb.Execute(func() error {
		start := time.Now()

		b, err := json.Marshal(msg)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.accessToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.accessToken)
		}

		resp, err := c.httpClient.Do(req)
		latency := time.Since(start)
		if err != nil {
			metrics.RecordPushSendLatency("error", latency)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			metrics.RecordPushSendLatency("5xx", latency)
			return fmt.Errorf("push provider 5xx: %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			metrics.RecordPushSendLatency(fmt.Sprintf("%d", resp.StatusCode), latency)
			return fmt.Errorf("push provider returned %d", resp.StatusCode)
		}

		var ticket ticketResponse
		if err := json.NewDecoder(resp.Body).Decode(&ticket); err != nil {
			metrics.RecordPushSendLatency("bad_response", latency)
			return fmt.Errorf("failed to decode push provider response: %w", err)
		}

		if len(ticket.Errors) > 0 {
			metrics.RecordPushSendLatency("provider_error", latency)
			return fmt.Errorf("push provider error: %s: %s", ticket.Errors[0].Code, ticket.Errors[0].Message)
		}
		if ticket.Data.Status == "error" {
			metrics.RecordPushSendLatency("ticket_error", latency)
			return fmt.Errorf("push ticket error: %s (%s)", ticket.Data.Message, ticket.Data.Details.Error)
		}

		metrics.RecordPushSendLatency("success", latency)
		c.logger.Debug("Push notification accepted by provider",
			zap.String("ticket_id", ticket.Data.ID),
		)
		return nil
	})
}
