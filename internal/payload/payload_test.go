package payload

import (
	"testing"

	"github.com/m3rciful/refbot/internal/catalog"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []struct {
		token string
		want  Payload
	}{
		{"guide_question_42", Payload{Action: ActionSelect, Kind: catalog.KindGuide, ID: 42}},
		{"template_page_3", Payload{Action: ActionPage, Kind: catalog.KindTemplate, Page: 3}},
		{"add_template", Payload{Action: ActionAdd, Kind: catalog.KindTemplate}},
		{"edit_guide", Payload{Action: ActionEditMenu, Kind: catalog.KindGuide}},
		{"cancel_template", Payload{Action: ActionCancel, Kind: catalog.KindTemplate}},
		{"edit_guide_question_7", Payload{Action: ActionEditSelect, Kind: catalog.KindGuide, ID: 7}},
		{"edit_template_page_0", Payload{Action: ActionEditPage, Kind: catalog.KindTemplate, Page: 0}},
		{"edit_template_field_answer", Payload{Action: ActionEditField, Kind: catalog.KindTemplate, Field: FieldAnswer}},
		{"edit_guide_field_delete", Payload{Action: ActionEditField, Kind: catalog.KindGuide, Field: FieldDelete}},
		{"cancel_guide_edit", Payload{Action: ActionEditCancel, Kind: catalog.KindGuide}},
		{"delete_answer_15", Payload{Action: ActionDeleteAnswer, ID: 15}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.token)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.token, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %+v, want %+v", tc.token, got, tc.want)
		}
		if got.Token() != tc.token {
			t.Fatalf("Token() = %q, want %q", got.Token(), tc.token)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"guide",
		"guide_question_",
		"guide_question_abc",
		"guide_question_-1",
		"unknown_question_1",
		"edit_guide_field_bogus",
		"edit_unknown_field_answer",
		"delete_answer_x",
		"cancel_guide_edit_extra",
		"guide_page_-2",
	}
	for _, token := range bad {
		if _, err := Parse(token); err == nil {
			t.Fatalf("Parse(%q) accepted malformed token", token)
		}
	}
}
