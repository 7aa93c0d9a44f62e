package bot

import (
	"errors"
	"fmt"

	"cerulean_ambassador_bot/internal/deeplink"
	"cerulean_ambassador_bot/internal/model"
	"cerulean_ambassador_bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleStart records the attribution carried by the start payload and
// presents the task checklist. Without a usable payload, or outside a
// private chat, it shows the main menu.
func (r *Router) handleStart(uc *UpdateContext, msg *tgbotapi.Message) error {
	payload := deeplink.Parse(msg.CommandArguments())
	if payload.Mode == model.ModeNone || !msg.Chat.IsPrivate() {
		return r.sendMenu(msg.Chat.ID)
	}

	log := uc.L().With(
		zap.String("mode", string(payload.Mode)),
		zap.String("referrer_id", payload.ReferrerID),
	)

	err := r.services.RecordAttribution(uc, &model.Attribution{
		UserID:     msg.From.ID,
		Username:   msg.From.UserName,
		ReferrerID: payload.ReferrerID,
		Mode:       payload.Mode,
	})
	if err != nil {
		var text string
		switch {
		case errors.Is(err, service.ErrSelfReferral):
			text = textSelfReferral
		case errors.Is(err, service.ErrAlreadyRegistered):
			text = textAlreadyRegistered
		case errors.Is(err, service.ErrAlreadyJoined):
			text = textAlreadyJoined
		default:
			return fmt.Errorf("failed to record attribution: %w", err)
		}
		log.Info("attribution rejected", zap.Error(err))
		return r.send(newHTMLMessage(msg.Chat.ID, text))
	}

	log.Info("attribution recorded")

	keyboard, err := checklistKeyboard(r.tasks, payload.Mode, payload.ReferrerID)
	if err != nil {
		return fmt.Errorf("failed to build checklist: %w", err)
	}

	reply := newHTMLMessage(msg.Chat.ID, checklistText(payload.Mode))
	reply.ReplyMarkup = keyboard
	return r.send(reply)
}

func (r *Router) handleBecomeAmbassador(uc *UpdateContext, msg *tgbotapi.Message) error {
	return r.enroll(uc, msg.Chat.ID, msg.From)
}

func (r *Router) handleReferralLink(_ *UpdateContext, msg *tgbotapi.Message) error {
	return r.send(newHTMLMessage(msg.Chat.ID, referralLinkText(r.services.ReferralLink(msg.From.ID))))
}

func (r *Router) handleStats(uc *UpdateContext, msg *tgbotapi.Message) error {
	return r.sendStats(uc, msg.Chat.ID, msg.From.ID)
}

// handleExport answers admins with the ambassador CSV. Everyone else gets no
// reply at all.
func (r *Router) handleExport(uc *UpdateContext, msg *tgbotapi.Message) error {
	data, err := r.services.ExportAmbassadors(uc, msg.From.ID)
	if err != nil {
		if errors.Is(err, service.ErrNotAdmin) {
			uc.L().Info("export requested by non-admin")
			return nil
		}
		return fmt.Errorf("failed to export ambassadors: %w", err)
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("ambassadors_%s.csv", r.now().UTC().Format("20060102")),
		Bytes: data,
	})
	if err := r.send(doc); err != nil {
		return fmt.Errorf("failed to send export: %w", err)
	}

	uc.L().Info("ambassadors exported", zap.Int("bytes", len(data)))
	return nil
}

func (r *Router) handleHelp(_ *UpdateContext, msg *tgbotapi.Message) error {
	return r.send(newHTMLMessage(msg.Chat.ID, textHelp))
}

func (r *Router) sendMenu(chatID int64) error {
	reply := newHTMLMessage(chatID, textWelcome)
	reply.ReplyMarkup = mainMenuKeyboard()
	return r.send(reply)
}

func (r *Router) enroll(uc *UpdateContext, chatID int64, user *tgbotapi.User) error {
	enrollment, err := r.services.Enroll(uc, user.ID, user.UserName)
	if err != nil {
		return fmt.Errorf("failed to enroll ambassador: %w", err)
	}

	if enrollment.Created {
		uc.L().Info("ambassador enrolled")
	}

	return r.send(newHTMLMessage(chatID, enrollmentText(enrollment)))
}

func (r *Router) sendStats(uc *UpdateContext, chatID, userID int64) error {
	stats, err := r.services.PersonalStats(uc, userID)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	return r.send(newHTMLMessage(chatID, statsText(stats)))
}
