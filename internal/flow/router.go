package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/elfshop/storebot/internal/chat"
	"github.com/elfshop/storebot/internal/session"
)

// Command surface. Case-sensitive, matched verbatim.
const (
	CmdStart           = "/start"
	CmdHelp            = "/help"
	CmdListProducts    = "list-products"
	CmdPlaceOrder      = "place-order"
	CmdSupportInfo     = "support-info"
	CmdAddProduct      = "add-product"
	CmdListCustomers   = "list-customers"
	CmdDeleteProducts  = "delete-all-products"
	CmdDeleteCustomers = "delete-all-customers"
)

// Router dispatches inbound events: moderation actions go to the handshake,
// identities with a live form go to their current step, everything else is
// treated as a command. Stateless itself; all per-identity state lives in
// the session store.
type Router struct {
	Transport  chat.Transport
	Sessions   *session.Store
	Catalog    Catalog
	Customers  Customers
	Orders     Orders
	Moderation *Moderation
	Producer   Publisher

	Service string
	Admin   string
	Support string
	Payment string
	Log     *slog.Logger
}

func (r *Router) Dispatch(ctx context.Context, ev chat.Event) {
	if ev.Kind == chat.KindAction {
		if ev.From != r.Admin {
			r.reply(ctx, ev.From, "You are not allowed to do that.")
			return
		}
		r.Moderation.Resolve(ctx, ev.Action)
		return
	}

	unlock := r.Sessions.Lock(ev.From)
	defer unlock()

	if st, ok := r.Sessions.Get(ev.From); ok {
		r.advance(ctx, ev, st)
		return
	}
	r.handleCommand(ctx, ev)
}

// advance delivers one inbound unit to the active step.
func (r *Router) advance(ctx context.Context, ev chat.Event, st session.State) {
	// A command that starts a form wins over the form in progress:
	// reset-and-restart, never two concurrent forms.
	if ev.Kind == chat.KindText && (ev.Text == CmdPlaceOrder || (ev.Text == CmdAddProduct && ev.From == r.Admin)) {
		r.Sessions.Delete(ev.From)
		r.handleCommand(ctx, ev)
		return
	}

	switch st.Step {
	case session.StepProductName, session.StepProductPrice, session.StepProductStock:
		r.advanceProductForm(ctx, ev, st)
	case session.StepOrderAddress, session.StepOrderPhone, session.StepOrderDisplayName,
		session.StepOrderProductID, session.StepOrderReceipt:
		r.advanceOrderForm(ctx, ev, st)
	default:
		r.Log.Error("unknown step, dropping state", "identity", ev.From, "step", st.Step)
		r.Sessions.Delete(ev.From)
		r.reply(ctx, ev.From, "Something went wrong, please start over.")
	}
}

func (r *Router) handleCommand(ctx context.Context, ev chat.Event) {
	switch ev.Text {
	case CmdStart, CmdHelp:
		r.reply(ctx, ev.From, r.menuText(ev.From))
	case CmdListProducts:
		r.listProducts(ctx, ev.From)
	case CmdPlaceOrder:
		r.startOrderForm(ctx, ev.From)
	case CmdSupportInfo:
		r.reply(ctx, ev.From, "For support contact us at "+r.Support)
	case CmdAddProduct:
		r.startProductForm(ctx, ev.From)
	case CmdListCustomers:
		r.listCustomers(ctx, ev.From)
	case CmdDeleteProducts:
		r.deleteAllProducts(ctx, ev.From)
	case CmdDeleteCustomers:
		r.deleteAllCustomers(ctx, ev.From)
	default:
		r.reply(ctx, ev.From, "Unrecognized command. Send /help for the list of commands.")
	}
}

func (r *Router) menuText(identity string) string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	b.WriteString(CmdListProducts + " - show the catalog\n")
	b.WriteString(CmdPlaceOrder + " - start an order\n")
	b.WriteString(CmdSupportInfo + " - contact support")
	if identity == r.Admin {
		b.WriteString("\n" + CmdAddProduct + " - add a product\n")
		b.WriteString(CmdListCustomers + " - list customers\n")
		b.WriteString(CmdDeleteProducts + " - clear the catalog\n")
		b.WriteString(CmdDeleteCustomers + " - clear customer data")
	}
	return b.String()
}

func (r *Router) listProducts(ctx context.Context, identity string) {
	products, err := r.Catalog.ListProducts(ctx)
	if err != nil {
		r.Log.Error("list products", "err", err)
		r.reply(ctx, identity, "Could not load the catalog, try again later.")
		return
	}
	if len(products) == 0 {
		r.reply(ctx, identity, "No products yet.")
		return
	}
	var b strings.Builder
	b.WriteString("Products:\n")
	for _, p := range products {
		avail := "(in stock)"
		if !p.InStock {
			avail = "(out of stock)"
		}
		fmt.Fprintf(&b, "id %d: %s - %.2f %s\n", p.ID, p.Name, p.Price, avail)
	}
	r.reply(ctx, identity, strings.TrimRight(b.String(), "\n"))
}

func (r *Router) listCustomers(ctx context.Context, identity string) {
	if identity != r.Admin {
		r.reply(ctx, identity, "You are not allowed to do that.")
		return
	}
	customers, err := r.Customers.List(ctx)
	if err != nil {
		r.Log.Error("list customers", "err", err)
		r.reply(ctx, identity, "Could not load customers, try again later.")
		return
	}
	if len(customers) == 0 {
		r.reply(ctx, identity, "No registered customers.")
		return
	}
	var b strings.Builder
	b.WriteString("Customers:\n")
	for _, c := range customers {
		fmt.Fprintf(&b, "%s, phone %s, address %s, ordered %s\n",
			c.DisplayName, c.Phone, c.Address, c.LastProductName)
	}
	r.reply(ctx, identity, strings.TrimRight(b.String(), "\n"))
}

func (r *Router) deleteAllProducts(ctx context.Context, identity string) {
	if identity != r.Admin {
		r.reply(ctx, identity, "You are not allowed to do that.")
		return
	}
	n, err := r.Catalog.DeleteAllProducts(ctx)
	if err != nil {
		r.Log.Error("delete products", "err", err)
		r.reply(ctx, identity, "Could not delete products, try again later.")
		return
	}
	r.reply(ctx, identity, fmt.Sprintf("Deleted %d products.", n))
}

func (r *Router) deleteAllCustomers(ctx context.Context, identity string) {
	if identity != r.Admin {
		r.reply(ctx, identity, "You are not allowed to do that.")
		return
	}
	n, err := r.Customers.DeleteAll(ctx)
	if err != nil {
		r.Log.Error("delete customers", "err", err)
		r.reply(ctx, identity, "Could not delete customer data, try again later.")
		return
	}
	r.reply(ctx, identity, fmt.Sprintf("Deleted %d customer records.", n))
}

// reply sends text and logs the delivery failure, if any. One identity's
// delivery trouble never propagates into another identity's handling.
func (r *Router) reply(ctx context.Context, identity, text string) {
	if err := r.Transport.SendText(ctx, identity, text); err != nil {
		r.Log.Error("send text", "identity", identity, "err", err)
	}
}
