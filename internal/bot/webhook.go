package bot

import (
	"errors"
	"fmt"

	"cerulean_ambassador_bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// AllowedUpdates are the only update kinds the router handles.
var AllowedUpdates = []string{"message", "callback_query"}

// Requester is satisfied by *tgbotapi.BotAPI.
type Requester interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

type WebhookConfig struct {
	URL         string
	SecretToken string
}

// RegisterWebhook points Telegram at URL. tgbotapi's WebhookConfig has no
// secret_token field, so the request is built by hand.
func RegisterWebhook(api Requester, cfg WebhookConfig) error {
	if cfg.URL == "" {
		return errors.New("webhook url is required")
	}

	allowed, err := json.Marshal(AllowedUpdates)
	if err != nil {
		return fmt.Errorf("failed to encode allowed updates: %w", err)
	}

	params := tgbotapi.Params{
		"url":             cfg.URL,
		"allowed_updates": string(allowed),
	}
	params.AddNonEmpty("secret_token", cfg.SecretToken)

	resp, err := api.MakeRequest("setWebhook", params)
	if err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("failed to set webhook: %s", resp.Description)
	}

	logger.Logger().Info("webhook registered",
		zap.String("url", cfg.URL),
		zap.Strings("allowed_updates", AllowedUpdates),
	)
	return nil
}
