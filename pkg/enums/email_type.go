package enums

import "fmt"

// EmailType selects the transactional template rendered by the email worker.
type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeOrderShipped      EmailType = "order_shipped"
	EmailTypeOrderDelivered    EmailType = "order_delivered"
	EmailTypeOrderCancelled    EmailType = "order_cancelled"
	EmailTypePasswordReset     EmailType = "password_reset"
)

var validEmailTypes = []EmailType{
	EmailTypeOrderConfirmation,
	EmailTypeOrderShipped,
	EmailTypeOrderDelivered,
	EmailTypeOrderCancelled,
	EmailTypePasswordReset,
}

// String implements fmt.Stringer.
func (e EmailType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EmailType.
func (e EmailType) IsValid() bool {
	for _, candidate := range validEmailTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEmailType converts raw input into an EmailType.
func ParseEmailType(value string) (EmailType, error) {
	for _, candidate := range validEmailTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid email type %q", value)
}
