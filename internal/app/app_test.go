package app

import (
	"testing"

	"github.com/m3rciful/refbot/internal/dialog"

	tele "gopkg.in/telebot.v4"
)

func TestMarkupReply(t *testing.T) {
	m := markup(&dialog.Keyboard{Reply: [][]string{{"a", "b"}, {"c"}}})
	if m == nil || !m.ResizeKeyboard {
		t.Fatalf("markup = %+v", m)
	}
	if len(m.ReplyKeyboard) != 2 || len(m.ReplyKeyboard[0]) != 2 {
		t.Fatalf("keyboard = %+v", m.ReplyKeyboard)
	}
	if m.ReplyKeyboard[1][0].Text != "c" {
		t.Fatalf("label = %q", m.ReplyKeyboard[1][0].Text)
	}
}

func TestMarkupInlineKeepsRawData(t *testing.T) {
	m := markup(&dialog.Keyboard{Inline: [][]dialog.Button{
		{{Text: "open", Data: "guide_question_3"}},
	}})
	if m == nil || len(m.InlineKeyboard) != 1 {
		t.Fatalf("markup = %+v", m)
	}
	btn := m.InlineKeyboard[0][0]
	if btn.Data != "guide_question_3" || btn.Unique != "" {
		t.Fatalf("button = %+v", btn)
	}
}

func TestMarkupNil(t *testing.T) {
	if m := markup(nil); m != nil {
		t.Fatalf("markup(nil) = %+v", m)
	}
	if m := markup(&dialog.Keyboard{}); m != nil {
		t.Fatalf("markup(empty) = %+v", m)
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		user *tele.User
		want string
	}{
		{nil, ""},
		{&tele.User{Username: "ops"}, "ops"},
		{&tele.User{FirstName: "Ivan", LastName: "Petrov"}, "Ivan Petrov"},
		{&tele.User{FirstName: "Ivan"}, "Ivan"},
	}
	for _, tc := range cases {
		if got := displayName(tc.user); got != tc.want {
			t.Fatalf("displayName(%+v) = %q, want %q", tc.user, got, tc.want)
		}
	}
}
