package session

// Step marks where an identity is inside a multi-step form. Two flows share
// the mechanism: product creation (admin) and order intake (any identity).
type Step int

const (
	StepNone Step = iota

	// product-creation flow
	StepProductName
	StepProductPrice
	StepProductStock

	// order flow
	StepOrderAddress
	StepOrderPhone
	StepOrderDisplayName
	StepOrderProductID
	StepOrderReceipt
)

// State accumulates one field per inbound message until the flow completes.
// Ephemeral: lives only in memory for the duration of the form.
type State struct {
	Step Step

	// product form
	ProductFormName  string
	ProductFormPrice float64

	// order form
	Address     string
	Phone       string
	DisplayName string
	ProductID   int64
	ProductName string
	Amount      float64
}
