// Package callbacks extracts routing tokens from Telegram callback updates.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Token returns the callback token carried by the update. Buttons built from
// a raw Data string arrive verbatim; buttons built with a telebot Unique are
// framed as \f<unique>|<payload> and yield the unique part.
func Token(cb *tele.Callback) string {
	if cb == nil {
		return ""
	}
	data := cb.Data
	if !strings.HasPrefix(data, "\f") {
		return data
	}
	data = strings.TrimPrefix(data, "\f")
	if i := strings.IndexByte(data, '|'); i >= 0 {
		return data[:i]
	}
	return data
}
