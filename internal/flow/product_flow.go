package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/elfshop/storebot/internal/chat"
	"github.com/elfshop/storebot/internal/session"
)

// Product-creation form, admin only: name -> price -> stock flag.

func (r *Router) startProductForm(ctx context.Context, identity string) {
	if identity != r.Admin {
		r.reply(ctx, identity, "You are not allowed to do that.")
		return
	}
	r.Sessions.Put(identity, session.State{Step: session.StepProductName})
	r.reply(ctx, identity, "Send the product name.")
}

func (r *Router) advanceProductForm(ctx context.Context, ev chat.Event, st session.State) {
	switch st.Step {
	case session.StepProductName:
		name := strings.TrimSpace(ev.Text)
		if ev.Kind != chat.KindText || name == "" {
			r.reply(ctx, ev.From, "Send the product name.")
			return
		}
		st.ProductFormName = name
		st.Step = session.StepProductPrice
		r.Sessions.Put(ev.From, st)
		r.reply(ctx, ev.From, "Send the product price.")

	case session.StepProductPrice:
		price, err := strconv.ParseFloat(strings.TrimSpace(ev.Text), 64)
		if ev.Kind != chat.KindText || err != nil || price < 0 {
			r.reply(ctx, ev.From, "That is not a valid price. Send a non-negative number.")
			return
		}
		st.ProductFormPrice = price
		st.Step = session.StepProductStock
		r.Sessions.Put(ev.From, st)
		r.reply(ctx, ev.From, "Is it in stock? Send 1 for yes, 0 for no.")

	case session.StepProductStock:
		var inStock bool
		switch strings.TrimSpace(ev.Text) {
		case "1":
			inStock = true
		case "0":
			inStock = false
		default:
			r.reply(ctx, ev.From, "Send 1 for in stock or 0 for out of stock.")
			return
		}

		id, err := r.Catalog.InsertProduct(ctx, st.ProductFormName, st.ProductFormPrice, inStock)
		r.Sessions.Delete(ev.From)
		if err != nil {
			r.Log.Error("insert product", "err", err)
			r.reply(ctx, ev.From, "Could not save the product, the form was cancelled.")
			return
		}
		r.reply(ctx, ev.From, fmt.Sprintf("Product added with id %d.", id))
	}
}
