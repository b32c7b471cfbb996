package domain

import (
	"fmt"
	"strings"
)

// ActionType enumerates every dialog action a button press can carry.
type ActionType string

const (
	ActionConfirm      ActionType = "confirm"
	ActionCancel       ActionType = "cancel"
	ActionRetry        ActionType = "retry"
	ActionBack         ActionType = "back"
	ActionPickCategory ActionType = "category"
	ActionShowAll      ActionType = "show-all-categories"
	ActionPickJar      ActionType = "jar"
	ActionPickAccount  ActionType = "account"
	ActionEditCategory ActionType = "edit-category"
	ActionEditJar      ActionType = "edit-jar"
	ActionEditAccount  ActionType = "edit-account"
)

// Action is a decoded button press. The payload fields are set only for the
// action types that carry one. Decoding happens once, at the transport
// boundary; the dialog controller then switches on Type exhaustively and
// never parses strings again.
type Action struct {
	Type       ActionType
	CategoryID string  // set for ActionPickCategory
	Bucket     Bucket  // set for ActionPickJar
	Account    Account // set for ActionPickAccount
}

// ParseAction decodes a wire identifier ("confirm", "category:12",
// "jar:NEC", ...) into an Action. Unknown identifiers return an error; the
// caller logs and ignores them.
func ParseAction(s string) (Action, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	switch ActionType(name) {
	case ActionConfirm, ActionCancel, ActionRetry, ActionBack,
		ActionShowAll, ActionEditCategory, ActionEditJar, ActionEditAccount:
		if hasArg {
			return Action{}, fmt.Errorf("action %q takes no argument", name)
		}
		return Action{Type: ActionType(name)}, nil
	case ActionPickCategory:
		if arg == "" {
			return Action{}, fmt.Errorf("action %q needs a category id", name)
		}
		return Action{Type: ActionPickCategory, CategoryID: arg}, nil
	case ActionPickJar:
		b := Bucket(arg)
		if !b.Valid() {
			return Action{}, fmt.Errorf("unknown bucket %q", arg)
		}
		return Action{Type: ActionPickJar, Bucket: b}, nil
	case ActionPickAccount:
		a := Account(arg)
		if !a.Valid() {
			return Action{}, fmt.Errorf("unknown account %q", arg)
		}
		return Action{Type: ActionPickAccount, Account: a}, nil
	}
	return Action{}, fmt.Errorf("unknown action %q", s)
}

// Encode renders the action back into its wire identifier, the inverse of
// ParseAction. Used when building prompt buttons.
func (a Action) Encode() string {
	switch a.Type {
	case ActionPickCategory:
		return string(ActionPickCategory) + ":" + a.CategoryID
	case ActionPickJar:
		return string(ActionPickJar) + ":" + string(a.Bucket)
	case ActionPickAccount:
		return string(ActionPickAccount) + ":" + string(a.Account)
	}
	return string(a.Type)
}
