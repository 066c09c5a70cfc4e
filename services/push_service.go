package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tripsketch/tripsketch-backend/config"
	"github.com/tripsketch/tripsketch-backend/logger"
	"github.com/tripsketch/tripsketch-backend/store"
	"github.com/tripsketch/tripsketch-backend/types"
)

const (
	// maxPushBatchSize is the maximum number of messages per request (Expo limit).
	maxPushBatchSize = 100
)

// PushService delivers push notifications. Delivery is best-effort; callers
// never consume a delivery confirmation.
type PushService interface {
	// SendToUsers sends a push notification to every device registered by the
	// given users.
	SendToUsers(ctx context.Context, emails []string, notification *types.PushNotification) error
}

// expoMessage is the Expo push API message format.
type expoMessage struct {
	To       string                 `json:"to"`
	Title    string                 `json:"title,omitempty"`
	Body     string                 `json:"body,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Sound    string                 `json:"sound,omitempty"`
	Priority string                 `json:"priority,omitempty"`
	TTLSec   int                    `json:"ttl,omitempty"`
}

// expoResponse represents the Expo push API response.
type expoResponse struct {
	Data []expoTicket `json:"data"`
}

type expoTicket struct {
	Status  string `json:"status"` // "ok" or "error"
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// expoPushService implements PushService against the Expo push HTTP API.
type expoPushService struct {
	userStore  store.UserStore
	httpClient *http.Client
	apiURL     string
	logger     *zap.SugaredLogger
}

// NewExpoPushService creates the Expo-backed push service.
func NewExpoPushService(userStore store.UserStore, cfg config.PushConfig) PushService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &expoPushService{
		userStore:  userStore,
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     cfg.APIUrl,
		logger:     logger.GetLogger().Named("push"),
	}
}

// SendToUsers resolves device tokens for the recipients and dispatches the
// notification in batches. A failed batch is logged and skipped; remaining
// batches still go out.
func (s *expoPushService) SendToUsers(ctx context.Context, emails []string, notification *types.PushNotification) error {
	if len(emails) == 0 {
		return nil
	}

	tokens, err := s.userStore.GetPushTokens(ctx, emails)
	if err != nil {
		return fmt.Errorf("failed to get push tokens: %w", err)
	}
	if len(tokens) == 0 {
		s.logger.Debugw("No push tokens for recipients", "recipientCount", len(emails))
		return nil
	}

	messages := make([]expoMessage, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, s.buildMessage(token, notification))
	}

	for i := 0; i < len(messages); i += maxPushBatchSize {
		end := i + maxPushBatchSize
		if end > len(messages) {
			end = len(messages)
		}
		if err := s.sendBatch(ctx, messages[i:end]); err != nil {
			s.logger.Errorw("Failed to send push notification batch",
				"batchStart", i,
				"batchEnd", end,
				"error", err)
		}
	}
	return nil
}

func (s *expoPushService) buildMessage(token string, notification *types.PushNotification) expoMessage {
	msg := expoMessage{
		To:    token,
		Title: notification.Title,
		Body:  notification.Body,
		Data:  notification.Data,
	}

	if notification.Sound != "" {
		msg.Sound = notification.Sound
	} else {
		msg.Sound = "default"
	}

	if notification.Priority != "" {
		msg.Priority = notification.Priority
	} else {
		msg.Priority = "high"
	}

	if notification.TTL > 0 {
		msg.TTLSec = notification.TTL
	}

	return msg
}

func (s *expoPushService) sendBatch(ctx context.Context, messages []expoMessage) error {
	if len(messages) == 0 {
		return nil
	}

	body, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Errorw("Push API returned non-OK status",
			"statusCode", resp.StatusCode,
			"response", string(respBody))
		return fmt.Errorf("push API returned status %d", resp.StatusCode)
	}

	var expoResp expoResponse
	if err := json.Unmarshal(respBody, &expoResp); err != nil {
		// Delivery likely succeeded; the ticket parse is diagnostics only.
		s.logger.Warnw("Failed to parse push response", "error", err)
		return nil
	}

	var okCount, errCount int
	for i, ticket := range expoResp.Data {
		if i >= len(messages) {
			break
		}
		if ticket.Status == "error" {
			errCount++
			s.logger.Warnw("Push notification failed",
				"token", logger.MaskToken(messages[i].To),
				"message", ticket.Message)
		} else {
			okCount++
		}
	}
	s.logger.Infow("Push notification batch processed",
		"total", len(expoResp.Data),
		"ok", okCount,
		"errors", errCount)
	return nil
}
