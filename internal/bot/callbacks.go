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

// handleVerify completes the presser's pending referral. The referrer in the
// callback is informational only: the stored attribution decides who is
// credited.
func (r *Router) handleVerify(uc *UpdateContext, q *tgbotapi.CallbackQuery, cb deeplink.Callback) (string, error) {
	result, err := r.services.Verify(uc, &model.Verification{
		UserID:     q.From.ID,
		ReferrerID: cb.ReferrerID,
		Mode:       cb.Mode,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyVerified):
			return answerAlreadyVerified, nil
		case errors.Is(err, service.ErrNothingToVerify):
			return answerNothingToVerify, nil
		default:
			return answerTryAgain, fmt.Errorf("failed to verify referral: %w", err)
		}
	}

	log := uc.L().With(
		zap.String("mode", string(result.Mode)),
		zap.String("referrer_id", result.ReferrerID),
		zap.Bool("credited", result.Credited),
	)
	if result.ReferrerID != cb.ReferrerID {
		log.Warn("callback referrer differs from stored referrer", zap.String("callback_referrer_id", cb.ReferrerID))
	}
	log.Info("referral verified")

	if err := r.send(newHTMLMessage(uc.ChatID(), verifiedText(result.Mode))); err != nil {
		return answerVerified, fmt.Errorf("failed to send confirmation: %w", err)
	}
	return answerVerified, nil
}

func (r *Router) handleBecomeAmbassadorButton(uc *UpdateContext, q *tgbotapi.CallbackQuery, _ deeplink.Callback) (string, error) {
	return "", r.enroll(uc, uc.ChatID(), q.From)
}

func (r *Router) handleMyStatsButton(uc *UpdateContext, q *tgbotapi.CallbackQuery, _ deeplink.Callback) (string, error) {
	return "", r.sendStats(uc, uc.ChatID(), q.From.ID)
}

func (r *Router) handleReferralLinkButton(uc *UpdateContext, q *tgbotapi.CallbackQuery, _ deeplink.Callback) (string, error) {
	return "", r.send(newHTMLMessage(uc.ChatID(), referralLinkText(r.services.ReferralLink(q.From.ID))))
}
