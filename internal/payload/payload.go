// Package payload encodes and decodes the callback button tokens.
//
// Tokens are fixed-arity, underscore-delimited, with numeric ids last:
//
//	{kind}_question_{id}   {kind}_page_{n}
//	add_{kind}  edit_{kind}  cancel_{kind}
//	edit_{kind}_question_{id}  edit_{kind}_page_{n}
//	edit_{kind}_field_{field}  cancel_{kind}_edit
//	delete_answer_{id}
package payload

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/refbot/internal/catalog"
)

// Action identifies what a callback token asks for.
type Action string

const (
	// ActionSelect opens one entry from a paged list.
	ActionSelect Action = "select"
	// ActionPage flips the browse list to another page.
	ActionPage Action = "page"
	// ActionAdd starts the add flow for a collection.
	ActionAdd Action = "add"
	// ActionEditMenu opens the edit entry picker.
	ActionEditMenu Action = "edit"
	// ActionCancel leaves the collection menu.
	ActionCancel Action = "cancel"
	// ActionEditSelect picks the entry to edit.
	ActionEditSelect Action = "edit_select"
	// ActionEditPage flips the edit picker to another page.
	ActionEditPage Action = "edit_page"
	// ActionEditField picks which field of the entry to change.
	ActionEditField Action = "edit_field"
	// ActionEditCancel aborts the edit flow.
	ActionEditCancel Action = "edit_cancel"
	// ActionDeleteAnswer removes a previously shown answer from the chat.
	ActionDeleteAnswer Action = "delete_answer"
)

// Field names an editable part of an entry.
type Field string

const (
	FieldQuestion Field = "question"
	FieldAnswer   Field = "answer"
	FieldPhoto    Field = "photo"
	FieldDelete   Field = "delete"
)

// Payload is a decoded callback token.
type Payload struct {
	Action Action
	Kind   catalog.Kind
	ID     int
	Page   int
	Field  Field
}

// Parse decodes a callback token. It is the single decode point for every
// button the bot emits.
func Parse(token string) (Payload, error) {
	parts := strings.Split(strings.TrimSpace(token), "_")
	bad := func() (Payload, error) {
		return Payload{}, fmt.Errorf("payload: unrecognized token %q", token)
	}

	switch {
	case len(parts) == 3 && parts[0] == "delete" && parts[1] == "answer":
		id, err := strconv.Atoi(parts[2])
		if err != nil || id <= 0 {
			return bad()
		}
		return Payload{Action: ActionDeleteAnswer, ID: id}, nil

	case len(parts) == 2 && parts[0] == "add":
		kind, err := catalog.ParseKind(parts[1])
		if err != nil {
			return bad()
		}
		return Payload{Action: ActionAdd, Kind: kind}, nil

	case len(parts) == 2 && parts[0] == "edit":
		kind, err := catalog.ParseKind(parts[1])
		if err != nil {
			return bad()
		}
		return Payload{Action: ActionEditMenu, Kind: kind}, nil

	case len(parts) == 2 && parts[0] == "cancel":
		kind, err := catalog.ParseKind(parts[1])
		if err != nil {
			return bad()
		}
		return Payload{Action: ActionCancel, Kind: kind}, nil

	case len(parts) == 3 && parts[0] == "cancel" && parts[2] == "edit":
		kind, err := catalog.ParseKind(parts[1])
		if err != nil {
			return bad()
		}
		return Payload{Action: ActionEditCancel, Kind: kind}, nil

	case len(parts) == 4 && parts[0] == "edit":
		kind, err := catalog.ParseKind(parts[1])
		if err != nil {
			return bad()
		}
		switch parts[2] {
		case "question":
			id, err := strconv.Atoi(parts[3])
			if err != nil || id <= 0 {
				return bad()
			}
			return Payload{Action: ActionEditSelect, Kind: kind, ID: id}, nil
		case "page":
			page, err := strconv.Atoi(parts[3])
			if err != nil || page < 0 {
				return bad()
			}
			return Payload{Action: ActionEditPage, Kind: kind, Page: page}, nil
		case "field":
			switch Field(parts[3]) {
			case FieldQuestion, FieldAnswer, FieldPhoto, FieldDelete:
				return Payload{Action: ActionEditField, Kind: kind, Field: Field(parts[3])}, nil
			}
			return bad()
		}
		return bad()

	case len(parts) == 3:
		kind, err := catalog.ParseKind(parts[0])
		if err != nil {
			return bad()
		}
		switch parts[1] {
		case "question":
			id, err := strconv.Atoi(parts[2])
			if err != nil || id <= 0 {
				return bad()
			}
			return Payload{Action: ActionSelect, Kind: kind, ID: id}, nil
		case "page":
			page, err := strconv.Atoi(parts[2])
			if err != nil || page < 0 {
				return bad()
			}
			return Payload{Action: ActionPage, Kind: kind, Page: page}, nil
		}
		return bad()
	}
	return bad()
}

// Token encodes the payload back into its wire form.
func (p Payload) Token() string {
	switch p.Action {
	case ActionSelect:
		return fmt.Sprintf("%s_question_%d", p.Kind, p.ID)
	case ActionPage:
		return fmt.Sprintf("%s_page_%d", p.Kind, p.Page)
	case ActionAdd:
		return fmt.Sprintf("add_%s", p.Kind)
	case ActionEditMenu:
		return fmt.Sprintf("edit_%s", p.Kind)
	case ActionCancel:
		return fmt.Sprintf("cancel_%s", p.Kind)
	case ActionEditSelect:
		return fmt.Sprintf("edit_%s_question_%d", p.Kind, p.ID)
	case ActionEditPage:
		return fmt.Sprintf("edit_%s_page_%d", p.Kind, p.Page)
	case ActionEditField:
		return fmt.Sprintf("edit_%s_field_%s", p.Kind, p.Field)
	case ActionEditCancel:
		return fmt.Sprintf("cancel_%s_edit", p.Kind)
	case ActionDeleteAnswer:
		return fmt.Sprintf("delete_answer_%d", p.ID)
	}
	return ""
}

// Select builds the token payload for opening entry id in kind.
func Select(kind catalog.Kind, id int) Payload {
	return Payload{Action: ActionSelect, Kind: kind, ID: id}
}

// PageFlip builds the token payload for moving the browse list to page.
func PageFlip(kind catalog.Kind, page int) Payload {
	return Payload{Action: ActionPage, Kind: kind, Page: page}
}

// EditSelect builds the token payload for picking entry id in the edit flow.
func EditSelect(kind catalog.Kind, id int) Payload {
	return Payload{Action: ActionEditSelect, Kind: kind, ID: id}
}

// EditPageFlip builds the token payload for moving the edit picker to page.
func EditPageFlip(kind catalog.Kind, page int) Payload {
	return Payload{Action: ActionEditPage, Kind: kind, Page: page}
}

// EditField builds the token payload for choosing which field to change.
func EditField(kind catalog.Kind, field Field) Payload {
	return Payload{Action: ActionEditField, Kind: kind, Field: field}
}

// DeleteAnswer builds the token payload for removing a shown answer.
func DeleteAnswer(id int) Payload {
	return Payload{Action: ActionDeleteAnswer, ID: id}
}
