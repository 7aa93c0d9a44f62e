package api

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"cerulean_ambassador_bot/internal/dedup"
	"cerulean_ambassador_bot/pkg/auth"
	"cerulean_ambassador_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const maxUpdateSize = 1 << 20

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

type webhookRoutes struct {
	h     UpdateHandler
	guard dedup.GuardI
}

func NewWebhookRoutes(handler gin.IRouter, path string, h UpdateHandler, guard dedup.GuardI, a *auth.TelegramAuth) {
	r := &webhookRoutes{h: h, guard: guard}

	handler.GET(path, r.Status)
	handler.POST(path, a.TelegramAuthMiddleware(), r.ReceiveUpdate)
}

func (r *webhookRoutes) Status(c *gin.Context) {
	c.String(http.StatusOK, "env running")
}

// ReceiveUpdate handles one Telegram update synchronously. Anything that
// parses is acknowledged with "ok" so Telegram does not redeliver it.
func (r *webhookRoutes) ReceiveUpdate(c *gin.Context) {
	log := logger.Logger()

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxUpdateSize))
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		log.Info("failed to read update body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload"})
		return
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		log.Info("failed to decode update", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload"})
		return
	}

	ctx := c.Request.Context()

	first, err := r.guard.FirstDelivery(ctx, update.UpdateID)
	if err != nil {
		log.Warn("dedup check failed, processing anyway", zap.Int("update_id", update.UpdateID), zap.Error(err))
	}
	if !first {
		log.Debug("dropping redelivered update", zap.Int("update_id", update.UpdateID))
		c.String(http.StatusOK, "ok")
		return
	}

	r.h.HandleUpdate(ctx, update)
	c.String(http.StatusOK, "ok")
}
