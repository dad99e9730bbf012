package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/elfshop/storebot/internal/chat"
	kafkax "github.com/elfshop/storebot/internal/kafka"
	"github.com/elfshop/storebot/internal/redisx"
	"github.com/elfshop/storebot/internal/shop"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Review is a pending order awaiting the admin's confirm/reject choice.
type Review struct {
	ID          string
	PromptRef   string
	Identity    string
	OrderID     int64
	ProductName string
	Amount      float64
	Phone       string
	Address     string
}

// Moderation runs the approve/reject handshake with the single admin
// identity. A review resolves exactly once: the first action pops it from
// the registry under the mutex; the redis guard extends that to multiple
// processes. Persistence is the authoritative side effect — notification
// failures are reported to the admin but never roll it back.
type Moderation struct {
	Transport chat.Transport
	Customers Customers
	Redis     *redis.Client // optional cross-process guard
	Producer  Publisher

	Service string
	Admin   string
	Log     *slog.Logger

	mu      sync.Mutex
	pending map[string]Review // keyed by review id
}

// Submit registers the review as pending and sends the admin the receipt
// with confirm/reject actions. Registration happens before the send so a tap
// that races the prompt delivery still finds its review; the entry is taken
// back out if the send fails.
func (m *Moderation) Submit(ctx context.Context, rv Review, imageRef string) error {
	rv.ID = uuid.NewString()
	caption := fmt.Sprintf("Receipt from %s\nProduct: %s\nAmount: %.2f\nPhone: %s\nAddress: %s",
		rv.Identity, rv.ProductName, rv.Amount, rv.Phone, rv.Address)
	actions := []chat.InlineAction{
		{Label: "Confirm", Token: chat.Action{Verb: chat.VerbConfirm, Identity: rv.Identity, ReviewID: rv.ID}.Token()},
		{Label: "Reject", Token: chat.Action{Verb: chat.VerbReject, Identity: rv.Identity, ReviewID: rv.ID}.Token()},
	}

	m.mu.Lock()
	if m.pending == nil {
		m.pending = make(map[string]Review)
	}
	m.pending[rv.ID] = rv
	m.mu.Unlock()

	promptRef, err := m.Transport.SendPhotoPrompt(ctx, m.Admin, imageRef, caption, actions)
	if err != nil {
		m.mu.Lock()
		delete(m.pending, rv.ID)
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	if cur, ok := m.pending[rv.ID]; ok {
		cur.PromptRef = promptRef
		m.pending[rv.ID] = cur
	}
	m.mu.Unlock()
	return nil
}

// Resolve applies the admin's choice. Duplicate or stale actions are
// acknowledged and dropped.
func (m *Moderation) Resolve(ctx context.Context, act chat.Action) {
	m.mu.Lock()
	rv, ok := m.pending[act.ReviewID]
	if ok {
		delete(m.pending, act.ReviewID)
	}
	m.mu.Unlock()
	if !ok {
		m.notifyAdmin(ctx, "That review was already handled.")
		return
	}

	if !m.claim(ctx, rv.ID, act.Verb) {
		m.notifyAdmin(ctx, "That review was already handled.")
		return
	}

	// Kill the buttons before side effects so a racing double-tap has
	// nothing left to press.
	if err := m.Transport.DisableActions(ctx, rv.PromptRef); err != nil {
		m.Log.Error("disable actions", "review", rv.ID, "err", err)
	}

	switch act.Verb {
	case chat.VerbConfirm:
		m.confirm(ctx, rv)
	case chat.VerbReject:
		m.reject(ctx, rv)
	}
}

func (m *Moderation) confirm(ctx context.Context, rv Review) {
	if err := m.Transport.SendText(ctx, rv.Identity, "Your order is confirmed. Expect delivery."); err != nil {
		m.Log.Error("notify customer", "identity", rv.Identity, "err", err)
		m.notifyAdmin(ctx, fmt.Sprintf("Confirmed, but could not notify %s.", rv.Identity))
	} else {
		m.notifyAdmin(ctx, "Order confirmed.")
	}
	m.publishResolved(rv, shop.StatusConfirmed)
}

func (m *Moderation) reject(ctx context.Context, rv Review) {
	if err := m.Customers.Delete(ctx, rv.Identity); err != nil {
		m.Log.Error("delete customer", "identity", rv.Identity, "err", err)
		m.notifyAdmin(ctx, fmt.Sprintf("Reject failed: could not remove data for %s.", rv.Identity))
		return
	}
	if err := m.Transport.SendText(ctx, rv.Identity, "Your receipt was rejected. Please send a valid receipt."); err != nil {
		m.Log.Error("notify customer", "identity", rv.Identity, "err", err)
		m.notifyAdmin(ctx, fmt.Sprintf("Rejected, but could not notify %s.", rv.Identity))
	} else {
		m.notifyAdmin(ctx, "Receipt rejected, the customer was told to resubmit.")
	}
	m.publishResolved(rv, shop.StatusRejected)
}

// claim takes the cross-process first-response-wins guard. With a single
// process the registry pop already decides the winner; the guard matters
// once reviewers scale out.
func (m *Moderation) claim(ctx context.Context, reviewID string, verb chat.Verb) bool {
	if m.Redis == nil {
		return true
	}
	key := fmt.Sprintf(redisx.KeyReviewResolve, reviewID)
	ok, err := m.Redis.SetNX(ctx, key, string(verb), redisx.TTLReviewResolve).Result()
	if err != nil {
		m.Log.Error("review claim", "review", reviewID, "err", err)
		return true // redis trouble must not wedge moderation
	}
	return ok
}

func (m *Moderation) publishResolved(rv Review, outcome shop.Status) {
	ev := shop.Envelope{
		EventID:       uuid.NewString(),
		EventType:     shop.EventReviewResolved,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      m.Service,
		CorrelationID: rv.Identity,
	}
	ev.Payload = kafkax.MustMarshal(shop.ReviewResolvedPayload{
		OrderID:  rv.OrderID,
		Identity: rv.Identity,
		Outcome:  outcome,
	})
	m.Producer.Publish(shop.PartitionKey(rv.Identity), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(shop.EventReviewResolved)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (m *Moderation) notifyAdmin(ctx context.Context, text string) {
	if err := m.Transport.SendText(ctx, m.Admin, text); err != nil {
		m.Log.Error("notify admin", "err", err)
	}
}
