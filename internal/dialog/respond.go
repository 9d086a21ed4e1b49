package dialog

import (
	"context"

	"github.com/m3rciful/refbot/internal/catalog"
	"github.com/m3rciful/refbot/internal/messages"
	"github.com/m3rciful/refbot/internal/pager"
	"github.com/m3rciful/refbot/internal/payload"
)

// Button is one inline keyboard button.
type Button struct {
	Text string
	Data string
}

// Keyboard describes the reply or inline markup attached to a message.
// At most one of Reply and Inline is set.
type Keyboard struct {
	Reply  [][]string
	Inline [][]Button
}

// Responder sends outbound messages. Implementations adapt the machine to a
// concrete transport; tests use an in-memory fake.
type Responder interface {
	Send(ctx context.Context, chatID int64, text string, kb *Keyboard) (int, error)
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, kb *Keyboard) (int, error)
	SendDocument(ctx context.Context, chatID int64, fileID, caption string, kb *Keyboard) (int, error)
	// SendAlbum sends up to ten photos as one media group; the caption goes
	// on the first photo. It returns the created message ids.
	SendAlbum(ctx context.Context, chatID int64, photoIDs []string, caption string) ([]int, error)
	// Edit rewrites a previously sent message in place.
	Edit(ctx context.Context, chatID int64, messageID int, text string, kb *Keyboard) error
	Delete(ctx context.Context, chatID int64, messageID int) error
}

// MainMenu is the persistent reply keyboard.
func MainMenu() *Keyboard {
	return &Keyboard{Reply: [][]string{
		{messages.BtnGuide, messages.BtnTemplates},
		{messages.BtnAdd, messages.BtnEdit},
	}}
}

// cancelMenu offers only the cancel command.
func cancelMenu() *Keyboard {
	return &Keyboard{Reply: [][]string{{messages.BtnCancelCmd}}}
}

// doneMenu offers the sentinel and cancel.
func doneMenu() *Keyboard {
	return &Keyboard{Reply: [][]string{{messages.BtnDone}, {messages.BtnCancelCmd}}}
}

// deleteButton builds the inline row removing a shown answer.
func deleteButton(entryID int) *Keyboard {
	return &Keyboard{Inline: [][]Button{{
		{Text: messages.BtnDeleteAnswer, Data: payload.DeleteAnswer(entryID).Token()},
	}}}
}

// browseKeyboard renders one page of entry buttons plus navigation.
func browseKeyboard(kind catalog.Kind, p pager.Page, edit bool) *Keyboard {
	var rows [][]Button
	for _, e := range p.Items {
		token := payload.Select(kind, e.ID)
		if edit {
			token = payload.EditSelect(kind, e.ID)
		}
		rows = append(rows, []Button{{Text: e.Question, Data: token.Token()}})
	}

	var nav []Button
	if p.HasPrev {
		token := payload.PageFlip(kind, p.Number-1)
		if edit {
			token = payload.EditPageFlip(kind, p.Number-1)
		}
		nav = append(nav, Button{Text: messages.BtnPrev, Data: token.Token()})
	}
	if p.HasNext {
		token := payload.PageFlip(kind, p.Number+1)
		if edit {
			token = payload.EditPageFlip(kind, p.Number+1)
		}
		nav = append(nav, Button{Text: messages.BtnNext, Data: token.Token()})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	if edit {
		rows = append(rows, []Button{{
			Text: messages.BtnCancelEdit,
			Data: payload.Payload{Action: payload.ActionEditCancel, Kind: kind}.Token(),
		}})
	} else if kind == catalog.KindTemplate {
		rows = append(rows,
			[]Button{{Text: messages.BtnAddTemplate, Data: payload.Payload{Action: payload.ActionAdd, Kind: kind}.Token()}},
			[]Button{{Text: messages.BtnEditTemplate, Data: payload.Payload{Action: payload.ActionEditMenu, Kind: kind}.Token()}},
			[]Button{{Text: messages.BtnBackToMenu, Data: payload.Payload{Action: payload.ActionCancel, Kind: kind}.Token()}},
		)
	}
	return &Keyboard{Inline: rows}
}

// fieldKeyboard offers the editable fields for the picked entry.
func fieldKeyboard(kind catalog.Kind) *Keyboard {
	return &Keyboard{Inline: [][]Button{
		{{Text: messages.BtnEditQuestion, Data: payload.EditField(kind, payload.FieldQuestion).Token()}},
		{{Text: messages.BtnEditAnswer, Data: payload.EditField(kind, payload.FieldAnswer).Token()}},
		{{Text: messages.BtnEditPhoto, Data: payload.EditField(kind, payload.FieldPhoto).Token()}},
		{{Text: messages.BtnEditDelete, Data: payload.EditField(kind, payload.FieldDelete).Token()}},
		{{Text: messages.BtnCancelEdit, Data: payload.Payload{Action: payload.ActionEditCancel, Kind: kind}.Token()}},
	}}
}
