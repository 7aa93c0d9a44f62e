package bot

import (
	"context"
	"time"

	"cerulean_ambassador_bot/internal/deeplink"
	"cerulean_ambassador_bot/internal/model"
	"cerulean_ambassador_bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	commandStart            = "start"
	commandBecomeAmbassador = "become_ambassador"
	commandReferralLink     = "get_referral_link"
	commandStats            = "stats"
	commandExport           = "export"
	commandHelp             = "help"
)

// Sender is the part of *tgbotapi.BotAPI the router talks to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type commandHandler func(uc *UpdateContext, msg *tgbotapi.Message) error

// callbackHandler returns the text shown in the client's callback toast.
type callbackHandler func(uc *UpdateContext, q *tgbotapi.CallbackQuery, cb deeplink.Callback) (string, error)

// Router dispatches updates to handlers registered once at construction.
type Router struct {
	bot       Sender
	services  service.ServiceI
	tasks     []model.Task
	commands  map[string]commandHandler
	callbacks map[string]callbackHandler
	now       func() time.Time
}

func NewRouter(bot Sender, services service.ServiceI, tasks []model.Task) *Router {
	r := &Router{
		bot:      bot,
		services: services,
		tasks:    tasks,
		now:      time.Now,
	}

	r.commands = map[string]commandHandler{
		commandStart:            r.handleStart,
		commandBecomeAmbassador: r.handleBecomeAmbassador,
		commandReferralLink:     r.handleReferralLink,
		commandStats:            r.handleStats,
		commandExport:           r.handleExport,
		commandHelp:             r.handleHelp,
	}

	r.callbacks = map[string]callbackHandler{
		deeplink.ActionVerify:           r.handleVerify,
		deeplink.ActionBecomeAmbassador: r.handleBecomeAmbassadorButton,
		deeplink.ActionMyStats:          r.handleMyStatsButton,
		deeplink.ActionReferralLink:     r.handleReferralLinkButton,
	}

	return r
}

// HandleUpdate processes one update. Failures are logged and never reach
// the webhook caller.
func (r *Router) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	uc := NewUpdateContext(ctx, update)

	switch {
	case update.Message != nil:
		r.handleMessage(uc, update.Message)
	case update.CallbackQuery != nil:
		r.handleCallback(uc, update.CallbackQuery)
	default:
		uc.L().Debug("ignoring unsupported update")
	}
}

func (r *Router) handleMessage(uc *UpdateContext, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		uc.L().Debug("ignoring message without sender")
		return
	}

	if !msg.IsCommand() {
		counted, err := r.services.CountMessage(uc, &model.ChatMessage{
			ChatID:   msg.Chat.ID,
			ChatType: msg.Chat.Type,
			UserID:   msg.From.ID,
			Username: msg.From.UserName,
			Text:     msg.Text,
			IsBot:    msg.From.IsBot,
		})
		if err != nil {
			uc.L().Error("failed to count message", zap.Error(err))
			return
		}
		if counted {
			uc.L().Debug("message counted")
		}
		return
	}

	command := msg.Command()
	handler, ok := r.commands[command]
	if !ok {
		uc.L().Debug("ignoring unknown command", zap.String("command", command))
		return
	}

	if err := handler(uc, msg); err != nil {
		uc.L().Error("command failed", zap.String("command", command), zap.Error(err))
	}
}

func (r *Router) handleCallback(uc *UpdateContext, q *tgbotapi.CallbackQuery) {
	var answer string
	defer func() {
		if _, err := r.bot.Request(tgbotapi.NewCallback(q.ID, answer)); err != nil {
			uc.L().Warn("failed to answer callback", zap.Error(err))
		}
	}()

	if q.From == nil {
		uc.L().Debug("ignoring callback without sender")
		return
	}

	cb, err := deeplink.DecodeCallback(q.Data)
	if err != nil {
		uc.L().Warn("invalid callback data", zap.String("data", q.Data), zap.Error(err))
		answer = answerUnknownAction
		return
	}

	handler, ok := r.callbacks[cb.Action]
	if !ok {
		uc.L().Debug("ignoring unknown callback", zap.String("action", cb.Action))
		answer = answerUnknownAction
		return
	}

	answer, err = handler(uc, q, cb)
	if err != nil {
		uc.L().Error("callback failed", zap.String("action", cb.Action), zap.Error(err))
		if answer == "" {
			answer = answerTryAgain
		}
	}
}

func (r *Router) send(c tgbotapi.Chattable) error {
	_, err := r.bot.Send(c)
	return err
}
