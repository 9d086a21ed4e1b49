package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestToken(t *testing.T) {
	cases := []struct {
		data string
		want string
	}{
		{"guide_question_3", "guide_question_3"},
		{"\fconfirm|guide_7", "confirm"},
		{"\fconfirm", "confirm"},
		{"", ""},
	}
	for _, tc := range cases {
		got := Token(&tele.Callback{Data: tc.data})
		if got != tc.want {
			t.Fatalf("Token(%q) = %q, want %q", tc.data, got, tc.want)
		}
	}
	if got := Token(nil); got != "" {
		t.Fatalf("Token(nil) = %q", got)
	}
}
