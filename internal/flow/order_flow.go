package flow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elfshop/storebot/internal/chat"
	kafkax "github.com/elfshop/storebot/internal/kafka"
	"github.com/elfshop/storebot/internal/session"
	"github.com/elfshop/storebot/internal/shop"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Order form, any identity: address -> phone -> display name -> product id
// -> receipt photo. No store mutation happens before the receipt step, so
// abandoning the form needs no cleanup.

func (r *Router) startOrderForm(ctx context.Context, identity string) {
	r.Sessions.Put(identity, session.State{Step: session.StepOrderAddress})
	r.reply(ctx, identity, "Please send your delivery address.")
}

func (r *Router) advanceOrderForm(ctx context.Context, ev chat.Event, st session.State) {
	switch st.Step {
	case session.StepOrderAddress:
		if ev.Kind != chat.KindText || strings.TrimSpace(ev.Text) == "" {
			r.reply(ctx, ev.From, "Please send your delivery address.")
			return
		}
		st.Address = ev.Text
		st.Step = session.StepOrderPhone
		r.Sessions.Put(ev.From, st)
		r.reply(ctx, ev.From, "Please send your phone number.")

	case session.StepOrderPhone:
		if ev.Kind != chat.KindText || strings.TrimSpace(ev.Text) == "" {
			r.reply(ctx, ev.From, "Please send your phone number.")
			return
		}
		st.Phone = ev.Text
		st.Step = session.StepOrderDisplayName
		r.Sessions.Put(ev.From, st)
		r.reply(ctx, ev.From, "Please send your contact name.")

	case session.StepOrderDisplayName:
		if ev.Kind != chat.KindText || strings.TrimSpace(ev.Text) == "" {
			r.reply(ctx, ev.From, "Please send your contact name.")
			return
		}
		st.DisplayName = ev.Text
		st.Step = session.StepOrderProductID
		r.Sessions.Put(ev.From, st)
		r.reply(ctx, ev.From, "Please send the id of the product you want to order.")

	case session.StepOrderProductID:
		r.captureProduct(ctx, ev, st)

	case session.StepOrderReceipt:
		r.captureReceipt(ctx, ev, st)
	}
}

func (r *Router) captureProduct(ctx context.Context, ev chat.Event, st session.State) {
	id, err := strconv.ParseInt(strings.TrimSpace(ev.Text), 10, 64)
	if ev.Kind != chat.KindText || err != nil {
		r.reply(ctx, ev.From, "Please send a numeric product id.")
		return
	}

	p, err := r.Catalog.GetProductByID(ctx, id)
	if errors.Is(err, shop.ErrNotFound) {
		r.reply(ctx, ev.From, "No product with that id. Try again.")
		return
	}
	if err != nil {
		r.Log.Error("get product", "id", id, "err", err)
		r.Sessions.Delete(ev.From)
		r.reply(ctx, ev.From, "Could not look up the product, the order was cancelled.")
		return
	}
	if !p.InStock {
		r.reply(ctx, ev.From, "That product is out of stock. Pick another id.")
		return
	}

	st.ProductID = p.ID
	st.ProductName = p.Name
	st.Amount = p.Price
	st.Step = session.StepOrderReceipt
	r.Sessions.Put(ev.From, st)
	r.reply(ctx, ev.From, fmt.Sprintf(
		"%s\nYou picked %s for %.2f. Now send a photo of the payment receipt.",
		r.Payment, p.Name, p.Price))
}

func (r *Router) captureReceipt(ctx context.Context, ev chat.Event, st session.State) {
	if ev.Kind != chat.KindImage || ev.ImageRef == "" {
		r.reply(ctx, ev.From, "Please send a photo of the payment receipt.")
		return
	}

	cust := shop.Customer{
		Identity:        ev.From,
		Phone:           st.Phone,
		Address:         st.Address,
		DisplayName:     st.DisplayName,
		LastProductName: st.ProductName,
	}
	orderID, err := r.Orders.Submit(ctx, cust, st.ProductID, st.Amount)
	// The form is over either way; partial progress is not retried.
	r.Sessions.Delete(ev.From)
	if err != nil {
		r.Log.Error("submit order", "identity", ev.From, "err", err)
		r.reply(ctx, ev.From, "Could not record your order, please start over.")
		return
	}

	rv := Review{
		Identity:    ev.From,
		OrderID:     orderID,
		ProductName: st.ProductName,
		Amount:      st.Amount,
		Phone:       st.Phone,
		Address:     st.Address,
	}
	if err := r.Moderation.Submit(ctx, rv, ev.ImageRef); err != nil {
		r.Log.Error("hand off review", "identity", ev.From, "err", err)
		r.reply(ctx, ev.From, "Could not forward your receipt, please start over.")
		return
	}

	r.publishSubmitted(ev.From, orderID, st)
	r.reply(ctx, ev.From, "Your receipt was sent to the administrator. Wait for confirmation.")
}

func (r *Router) publishSubmitted(identity string, orderID int64, st session.State) {
	ev := shop.Envelope{
		EventID:       uuid.NewString(),
		EventType:     shop.EventOrderSubmitted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      r.Service,
		CorrelationID: identity,
	}
	ev.Payload = kafkax.MustMarshal(shop.OrderSubmittedPayload{
		OrderID:     orderID,
		Identity:    identity,
		ProductID:   st.ProductID,
		ProductName: st.ProductName,
		Amount:      st.Amount,
	})
	r.Producer.Publish(shop.PartitionKey(identity), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(shop.EventOrderSubmitted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
