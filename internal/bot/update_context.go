package bot

import (
	"context"

	"cerulean_ambassador_bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// UpdateContext carries one update through the handlers together with a
// logger that already knows who sent it and where.
type UpdateContext struct {
	context.Context
	update tgbotapi.Update
	log    *zap.Logger
}

func NewUpdateContext(ctx context.Context, update tgbotapi.Update) *UpdateContext {
	uc := &UpdateContext{
		Context: ctx,
		update:  update,
	}

	fields := []zap.Field{zap.Int("update_id", update.UpdateID)}
	if chat := uc.Chat(); chat != nil {
		fields = append(fields,
			zap.Int64("chat_id", chat.ID),
			zap.String("chat_type", chat.Type),
		)
	}
	if sender := uc.Sender(); sender != nil {
		fields = append(fields,
			zap.Int64("sender_id", sender.ID),
			zap.String("sender_username", sender.UserName),
		)
	}
	uc.log = logger.Logger().With(fields...)

	return uc
}

func (uc *UpdateContext) L() *zap.Logger {
	return uc.log
}

func (uc *UpdateContext) Update() tgbotapi.Update {
	return uc.update
}

// Chat is nil for callbacks pressed on inline messages, which tgbotapi's
// Update.FromChat does not guard against.
func (uc *UpdateContext) Chat() *tgbotapi.Chat {
	switch {
	case uc.update.Message != nil:
		return uc.update.Message.Chat
	case uc.update.CallbackQuery != nil && uc.update.CallbackQuery.Message != nil:
		return uc.update.CallbackQuery.Message.Chat
	default:
		return nil
	}
}

func (uc *UpdateContext) Sender() *tgbotapi.User {
	return uc.update.SentFrom()
}

// ChatID is where replies go. Without a chat the sender's private chat is
// used instead.
func (uc *UpdateContext) ChatID() int64 {
	if chat := uc.Chat(); chat != nil {
		return chat.ID
	}
	if sender := uc.Sender(); sender != nil {
		return sender.ID
	}
	return 0
}
