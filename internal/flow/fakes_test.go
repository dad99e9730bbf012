package flow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/elfshop/storebot/internal/chat"
	"github.com/elfshop/storebot/internal/session"
	"github.com/elfshop/storebot/internal/shop"
	kafkago "github.com/segmentio/kafka-go"
)

type sentText struct {
	to   string
	text string
}

type sentPrompt struct {
	to       string
	imageRef string
	caption  string
	actions  []chat.InlineAction
	ref      string
}

type fakeTransport struct {
	mu         sync.Mutex
	texts      []sentText
	prompts    []sentPrompt
	disabled   []string
	failTextTo map[string]bool
	promptErr  error
	onPrompt   func(actions []chat.InlineAction) // fires before SendPhotoPrompt returns
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{failTextTo: map[string]bool{}}
}

func (f *fakeTransport) SendText(_ context.Context, identity, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTextTo[identity] {
		return &shop.DeliveryError{Identity: identity, Err: errors.New("unreachable")}
	}
	f.texts = append(f.texts, sentText{to: identity, text: text})
	return nil
}

func (f *fakeTransport) SendPhotoPrompt(_ context.Context, identity, imageRef, caption string, actions []chat.InlineAction) (string, error) {
	f.mu.Lock()
	if f.promptErr != nil {
		f.mu.Unlock()
		return "", f.promptErr
	}
	ref := fmt.Sprintf("prompt-%d", len(f.prompts)+1)
	f.prompts = append(f.prompts, sentPrompt{
		to: identity, imageRef: imageRef, caption: caption, actions: actions, ref: ref,
	})
	hook := f.onPrompt
	f.mu.Unlock()
	if hook != nil {
		hook(actions)
	}
	return ref, nil
}

func (f *fakeTransport) DisableActions(_ context.Context, promptRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled = append(f.disabled, promptRef)
	return nil
}

func (f *fakeTransport) textsTo(identity string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, t := range f.texts {
		if t.to == identity {
			out = append(out, t.text)
		}
	}
	return out
}

func (f *fakeTransport) lastTextTo(identity string) string {
	ts := f.textsTo(identity)
	if len(ts) == 0 {
		return ""
	}
	return ts[len(ts)-1]
}

type fakeCatalog struct {
	mu        sync.Mutex
	products  map[int64]shop.Product
	nextID    int64
	insertErr error
	getErr    error
	deletes   int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[int64]shop.Product{}}
}

func (f *fakeCatalog) InsertProduct(_ context.Context, name string, price float64, inStock bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	f.products[f.nextID] = shop.Product{ID: f.nextID, Name: name, Price: price, InStock: inStock}
	return f.nextID, nil
}

func (f *fakeCatalog) ListProducts(_ context.Context) ([]shop.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []shop.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCatalog) GetProductByID(_ context.Context, id int64) (shop.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return shop.Product{}, f.getErr
	}
	p, ok := f.products[id]
	if !ok {
		return shop.Product{}, shop.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) DeleteAllProducts(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.products))
	f.products = map[int64]shop.Product{}
	f.deletes++
	return n, nil
}

func (f *fakeCatalog) seed(p shop.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
	if p.ID > f.nextID {
		f.nextID = p.ID
	}
}

type fakeCustomers struct {
	mu     sync.Mutex
	rows   map[string]shop.Customer
	nextID int64
	err    error
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{rows: map[string]shop.Customer{}}
}

func (f *fakeCustomers) Upsert(_ context.Context, c shop.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upsertLocked(c)
}

func (f *fakeCustomers) upsertLocked(c shop.Customer) error {
	if f.err != nil {
		return f.err
	}
	if prev, ok := f.rows[c.Identity]; ok {
		c.ID = prev.ID
	} else {
		f.nextID++
		c.ID = f.nextID
	}
	f.rows[c.Identity] = c
	return nil
}

func (f *fakeCustomers) Delete(_ context.Context, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.rows, identity)
	return nil
}

func (f *fakeCustomers) DeleteAll(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.rows))
	f.rows = map[string]shop.Customer{}
	return n, nil
}

func (f *fakeCustomers) List(_ context.Context) ([]shop.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []shop.Customer
	for _, c := range f.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCustomers) get(identity string) (shop.Customer, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[identity]
	return c, ok
}

type submittedOrder struct {
	customer  shop.Customer
	productID int64
	amount    float64
}

// fakeOrders mirrors OrderRepo.Submit: the customer snapshot and the order
// row land together or not at all.
type fakeOrders struct {
	mu        sync.Mutex
	customers *fakeCustomers
	nextID    int64
	submitted []submittedOrder
	err       error
}

func (f *fakeOrders) Submit(_ context.Context, c shop.Customer, productID int64, amount float64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.customers.mu.Lock()
	err := f.customers.upsertLocked(c)
	f.customers.mu.Unlock()
	if err != nil {
		return 0, err
	}
	f.nextID++
	f.submitted = append(f.submitted, submittedOrder{customer: c, productID: productID, amount: amount})
	return f.nextID, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	values [][]byte
}

func (f *fakePublisher) Publish(_, value []byte, _ ...kafkago.Header) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = append(f.values, value)
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.values)
}

type fixture struct {
	router    *Router
	transport *fakeTransport
	catalog   *fakeCatalog
	customers *fakeCustomers
	orders    *fakeOrders
	published *fakePublisher
	reviewed  *fakePublisher
}

const adminID = "admin-1"

func newFixture() *fixture {
	tr := newFakeTransport()
	cat := newFakeCatalog()
	cust := newFakeCustomers()
	ords := &fakeOrders{customers: cust}
	pSub := &fakePublisher{}
	pRev := &fakePublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mod := &Moderation{
		Transport: tr,
		Customers: cust,
		Producer:  pRev,
		Service:   "test",
		Admin:     adminID,
		Log:       logger,
	}
	r := &Router{
		Transport:  tr,
		Sessions:   session.New(time.Minute),
		Catalog:    cat,
		Customers:  cust,
		Orders:     ords,
		Moderation: mod,
		Producer:   pSub,
		Service:    "test",
		Admin:      adminID,
		Support:    "@storefront_support",
		Payment:    "Pay to card 1234 5678.",
		Log:        logger,
	}
	return &fixture{
		router: r, transport: tr, catalog: cat, customers: cust,
		orders: ords, published: pSub, reviewed: pRev,
	}
}

func text(from, s string) chat.Event {
	return chat.Event{From: from, Kind: chat.KindText, Text: s}
}

func image(from, ref string) chat.Event {
	return chat.Event{From: from, Kind: chat.KindImage, ImageRef: ref}
}

func actionEvent(from, token string) chat.Event {
	act, err := chat.ParseAction(token)
	if err != nil {
		panic(err)
	}
	return chat.Event{From: from, Kind: chat.KindAction, Action: act}
}

func productWidget() shop.Product {
	return shop.Product{ID: 1, Name: "Widget", Price: 9.99, InStock: true}
}

func widgetCustomer(identity string) shop.Customer {
	return shop.Customer{
		Identity:        identity,
		Phone:           "+1000",
		Address:         "Main St 1",
		DisplayName:     "Alice",
		LastProductName: "Widget",
	}
}
