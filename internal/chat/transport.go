package chat

import "context"

// InlineAction is a tappable button attached to a prompt.
type InlineAction struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

// Transport is the outbound side of the chat layer. Implementations are
// fire-and-forget: a failed send surfaces as *shop.DeliveryError and is
// never retried here.
type Transport interface {
	SendText(ctx context.Context, identity, text string) error

	// SendPhotoPrompt delivers an image with caption and action buttons and
	// returns a prompt reference usable with DisableActions.
	SendPhotoPrompt(ctx context.Context, identity, imageRef, caption string, actions []InlineAction) (string, error)

	// DisableActions removes the action buttons from a previously sent prompt.
	DisableActions(ctx context.Context, promptRef string) error
}
