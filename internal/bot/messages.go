package bot

import (
	"fmt"
	"html"
	"strings"

	"cerulean_ambassador_bot/internal/deeplink"
	"cerulean_ambassador_bot/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	textWelcome = "🌟 <b>Welcome to Cerulean Labs!</b>\n\nChoose an option:"

	textHelp = "<b>Commands</b>\n" +
		"/start - open the main menu\n" +
		"/become_ambassador - join the ambassador program\n" +
		"/get_referral_link - get your contest invite link\n" +
		"/stats - show your points and activity\n" +
		"/help - show this message"

	textSelfReferral      = "⚠️ You cannot use your own invite link."
	textAlreadyRegistered = "You are already registered. Welcome back!"
	textAlreadyJoined     = "You already joined this month's contest."

	textAmbassadorChecklist = "👋 You were invited to Cerulean Labs by one of our ambassadors.\n\n" +
		"Complete the tasks below, then tap <b>Verify</b>:"
	textContestChecklist = "🏆 You were invited to this month's referral contest.\n\n" +
		"Complete the tasks below, then tap <b>Verify</b>:"

	textVerifiedAmbassador = "✅ Verified! Thanks for joining Cerulean Labs."
	textVerifiedContest    = "✅ Verified! Your referral now counts for your inviter in this month's contest."

	answerVerified        = "Verified"
	answerAlreadyVerified = "You are already verified."
	answerNothingToVerify = "Nothing to verify. Open your invite link again."
	answerUnknownAction   = "This button is no longer supported."
	answerTryAgain        = "Something went wrong, please try again later."

	buttonAmbassador   = "👑 Ambassador Program"
	buttonReferralLink = "🔗 My Referral Link"
	buttonStats        = "📊 My Stats"
	buttonVerify       = "✅ Verify"
)

func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	return msg
}

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buttonAmbassador, deeplink.ActionBecomeAmbassador),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buttonReferralLink, deeplink.ActionReferralLink),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buttonStats, deeplink.ActionMyStats),
		),
	)
}

// checklistKeyboard lists one URL button per task and a final verify button
// that carries the attribution back to us.
func checklistKeyboard(tasks []model.Task, mode model.Mode, referrerID string) (tgbotapi.InlineKeyboardMarkup, error) {
	data, err := deeplink.EncodeCallback(deeplink.Callback{
		Action:     deeplink.ActionVerify,
		Mode:       mode,
		ReferrerID: referrerID,
	})
	if err != nil {
		return tgbotapi.InlineKeyboardMarkup{}, err
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tasks)+1)
	for _, task := range tasks {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(task.Title, task.URL),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(buttonVerify, data),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...), nil
}

func checklistText(mode model.Mode) string {
	if mode == model.ModeContest {
		return textContestChecklist
	}
	return textAmbassadorChecklist
}

func verifiedText(mode model.Mode) string {
	if mode == model.ModeContest {
		return textVerifiedContest
	}
	return textVerifiedAmbassador
}

func enrollmentText(enrollment *model.Enrollment) string {
	if enrollment.Created {
		return fmt.Sprintf("👑 You are now an Ambassador!\nLink: <code>%s</code>", html.EscapeString(enrollment.Link))
	}
	return fmt.Sprintf("You are already an ambassador.\nLink: <code>%s</code>", html.EscapeString(enrollment.Link))
}

func referralLinkText(link string) string {
	return fmt.Sprintf("🔗 Your contest invite link:\n<code>%s</code>", html.EscapeString(link))
}

func statsText(stats *model.PersonalStats) string {
	var lines []string
	if stats.AmbassadorPoints != nil {
		lines = append(lines, fmt.Sprintf("👑 Ambassador points: <b>%d</b>", *stats.AmbassadorPoints))
	}
	if stats.WeeklyMessages != nil {
		lines = append(lines, fmt.Sprintf("💬 Messages this week (%s): <b>%d</b>", stats.Week, *stats.WeeklyMessages))
	}
	if stats.ContestReferrals > 0 {
		lines = append(lines, fmt.Sprintf("🏆 Contest referrals (%s): <b>%d</b>", stats.Month, stats.ContestReferrals))
	}

	if len(lines) == 0 {
		return "📊 No activity recorded yet."
	}
	return "📊 <b>Your stats</b>\n\n" + strings.Join(lines, "\n")
}
