package chat

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindText   Kind = "text"
	KindImage  Kind = "image"
	KindAction Kind = "action"
)

func (k Kind) Valid() bool {
	return k == KindText || k == KindImage || k == KindAction
}

// Event is one inbound unit from the chat layer. Exactly one of Text,
// ImageRef or Action carries the payload depending on Kind.
type Event struct {
	From     string
	Kind     Kind
	Text     string
	ImageRef string
	Action   Action
}

type Verb string

const (
	VerbConfirm Verb = "confirm"
	VerbReject  Verb = "reject"
)

// Action is a moderation choice decoded from an inline button token.
type Action struct {
	Verb     Verb
	Identity string
	ReviewID string
}

func (a Action) Token() string {
	return fmt.Sprintf("%s:%s:%s", a.Verb, a.Identity, a.ReviewID)
}

func ParseAction(token string) (Action, error) {
	parts := strings.SplitN(token, ":", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return Action{}, fmt.Errorf("malformed action token %q", token)
	}
	verb := Verb(parts[0])
	if verb != VerbConfirm && verb != VerbReject {
		return Action{}, fmt.Errorf("unknown action verb %q", parts[0])
	}
	return Action{Verb: verb, Identity: parts[1], ReviewID: parts[2]}, nil
}
