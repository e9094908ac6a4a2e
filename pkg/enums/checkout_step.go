package enums

import "fmt"

// CheckoutStep names the ordered post-payment actions run after a verified charge.
type CheckoutStep string

const (
	CheckoutStepMarkPaid           CheckoutStep = "mark_paid"
	CheckoutStepRecordTransaction  CheckoutStep = "record_transaction"
	CheckoutStepSendConfirmation   CheckoutStep = "send_confirmation"
	CheckoutStepDecrementInventory CheckoutStep = "decrement_inventory"
	CheckoutStepClearCart          CheckoutStep = "clear_cart"
)

// CheckoutStepOrder is the execution order of the post-payment sequence.
var CheckoutStepOrder = []CheckoutStep{
	CheckoutStepMarkPaid,
	CheckoutStepRecordTransaction,
	CheckoutStepSendConfirmation,
	CheckoutStepDecrementInventory,
	CheckoutStepClearCart,
}

// String implements fmt.Stringer.
func (c CheckoutStep) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutStep.
func (c CheckoutStep) IsValid() bool {
	for _, candidate := range CheckoutStepOrder {
		if candidate == c {
			return true
		}
	}
	return false
}

// CheckoutStepStatus is the persisted state of a single step.
type CheckoutStepStatus string

const (
	CheckoutStepStatusPending CheckoutStepStatus = "pending"
	CheckoutStepStatusDone    CheckoutStepStatus = "done"
	CheckoutStepStatusFailed  CheckoutStepStatus = "failed"
)

var validCheckoutStepStatuses = []CheckoutStepStatus{
	CheckoutStepStatusPending,
	CheckoutStepStatusDone,
	CheckoutStepStatusFailed,
}

// String implements fmt.Stringer.
func (c CheckoutStepStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutStepStatus.
func (c CheckoutStepStatus) IsValid() bool {
	for _, candidate := range validCheckoutStepStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCheckoutStep converts raw input into a CheckoutStep.
func ParseCheckoutStep(value string) (CheckoutStep, error) {
	for _, candidate := range CheckoutStepOrder {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout step %q", value)
}
