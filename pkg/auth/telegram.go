package auth

import (
	"crypto/subtle"
	"net/http"

	"cerulean_ambassador_bot/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SecretTokenHeader is set by Telegram on every webhook call when the
// webhook was registered with a secret_token.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

type TelegramAuth struct {
	secretToken string
}

func NewTelegramAuth(secretToken string) *TelegramAuth {
	return &TelegramAuth{
		secretToken: secretToken,
	}
}

// Enabled is false when no secret is configured; every request passes then.
func (t *TelegramAuth) Enabled() bool {
	return t.secretToken != ""
}

func (t *TelegramAuth) Valid(token string) bool {
	if !t.Enabled() {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(t.secretToken)) == 1
}

func (t *TelegramAuth) TelegramAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		if !t.Valid(c.GetHeader(SecretTokenHeader)) {
			log.Info("invalid webhook secret token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Next()
	}
}
