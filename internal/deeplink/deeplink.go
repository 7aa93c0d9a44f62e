// Package deeplink parses and builds the bot start payloads that carry
// referral attribution, and the callback tokens round-tripped through inline
// keyboards.
package deeplink

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cerulean_ambassador_bot/internal/model"
)

const (
	ambassadorPrefix = "amb_"
	contestPrefix    = "ref_"

	// MaxReferrerLength keeps "verify_<mode>_<referrer>" inside Telegram's
	// 64-byte callback_data limit.
	MaxReferrerLength = 32

	maxCallbackLength = 64
	separator         = "_"
)

const (
	ActionVerify           = "verify"
	ActionBecomeAmbassador = "become_amb"
	ActionMyStats          = "my_stats"
	ActionReferralLink     = "get_ref_link"
)

var (
	ErrEmptyCallback     = errors.New("empty callback data")
	ErrMalformedCallback = errors.New("malformed callback data")
	ErrCallbackTooLong   = errors.New("callback data exceeds 64 bytes")
)

type StartPayload struct {
	Mode       model.Mode
	ReferrerID string
}

// Parse extracts the referral mode and referrer from a /start argument.
// Anything unrecognised yields model.ModeNone. The referrer is not checked
// against storage.
func Parse(payload string) StartPayload {
	payload = strings.TrimSpace(payload)

	var mode model.Mode
	var referrer string
	switch {
	case strings.HasPrefix(payload, ambassadorPrefix):
		mode, referrer = model.ModeAmbassador, strings.TrimPrefix(payload, ambassadorPrefix)
	case strings.HasPrefix(payload, contestPrefix):
		mode, referrer = model.ModeContest, strings.TrimPrefix(payload, contestPrefix)
	default:
		return StartPayload{Mode: model.ModeNone}
	}

	if referrer == "" || len(referrer) > MaxReferrerLength {
		return StartPayload{Mode: model.ModeNone}
	}

	return StartPayload{Mode: mode, ReferrerID: referrer}
}

func AmbassadorToken(userID int64) string {
	return ambassadorPrefix + strconv.FormatInt(userID, 10)
}

func ContestToken(userID int64) string {
	return contestPrefix + strconv.FormatInt(userID, 10)
}

func StartLink(botUsername, token string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", strings.TrimPrefix(botUsername, "@"), token)
}

type Callback struct {
	Action     string
	Mode       model.Mode
	ReferrerID string
}

// EncodeCallback joins the callback tokens with underscores. Callbacks
// without a mode are encoded as the bare action.
func EncodeCallback(cb Callback) (string, error) {
	if cb.Action == "" {
		return "", ErrMalformedCallback
	}

	data := cb.Action
	if cb.Mode != model.ModeNone {
		data = strings.Join([]string{cb.Action, string(cb.Mode), cb.ReferrerID}, separator)
	}

	if len(data) > maxCallbackLength {
		return "", ErrCallbackTooLong
	}

	return data, nil
}

// DecodeCallback is the inverse of EncodeCallback. The referrer is the
// remainder after the second separator, so it may itself contain "_".
func DecodeCallback(data string) (Callback, error) {
	if data == "" {
		return Callback{}, ErrEmptyCallback
	}

	if data == ActionVerify {
		return Callback{}, fmt.Errorf("%w: verify without mode", ErrMalformedCallback)
	}
	if !strings.HasPrefix(data, ActionVerify+separator) {
		return Callback{Action: data}, nil
	}

	parts := strings.SplitN(data, separator, 3)
	if len(parts) != 3 || parts[2] == "" {
		return Callback{}, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
	}

	mode := model.Mode(parts[1])
	if !mode.Valid() {
		return Callback{}, fmt.Errorf("%w: unknown mode %q", ErrMalformedCallback, parts[1])
	}

	return Callback{Action: parts[0], Mode: mode, ReferrerID: parts[2]}, nil
}
