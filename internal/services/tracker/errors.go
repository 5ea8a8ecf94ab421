package tracker

import (
	"errors"
	"fmt"
)

// Kind classifies a tracking or alerting failure.
type Kind int

const (
	KindUnknown Kind = iota
	InvalidInput
	ScrapeFailed
	PriceNotFound
	PersistenceFailed
	InvalidTarget
	NotificationFailed
	Unauthenticated
	ProductNotFound
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrScrapeFailed       = errors.New("scrape failed")
	ErrPriceNotFound      = errors.New("price not found")
	ErrPersistenceFailed  = errors.New("persistence failed")
	ErrInvalidTarget      = errors.New("invalid target")
	ErrNotificationFailed = errors.New("notification failed")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrProductNotFound    = errors.New("product not found")
)

var kindSentinels = map[Kind]error{
	InvalidInput:       ErrInvalidInput,
	ScrapeFailed:       ErrScrapeFailed,
	PriceNotFound:      ErrPriceNotFound,
	PersistenceFailed:  ErrPersistenceFailed,
	InvalidTarget:      ErrInvalidTarget,
	NotificationFailed: ErrNotificationFailed,
	Unauthenticated:    ErrUnauthenticated,
	ProductNotFound:    ErrProductNotFound,
}

// User-facing messages.
const (
	MsgInvalidURL         = "Please enter a valid product URL."
	MsgScrapeFailed       = "Failed to scrape product. Please try again."
	MsgScrapeNoData       = "Could not extract product information"
	MsgPriceNotFound      = "Could not extract price from this page. Try a different product URL."
	MsgSaveFailed         = "Product could not be saved. Showing an unsaved result."
	MsgSignInRequired     = "Please sign in to set price alerts."
	MsgInvalidPrice       = "Please enter a valid target price."
	MsgTargetTooHigh      = "Target price should be lower than current price."
	MsgAlertFailed        = "Failed to set price alert. Please try again."
	MsgConfirmationFailed = "Alert set, but the confirmation could not be sent."
	MsgProductNotFound    = "Product not found."
)

func (k Kind) String() string {
	if err, ok := kindSentinels[k]; ok {
		return err.Error()
	}
	return "unknown"
}

// Error is a classified failure. Message is safe to show to end users; Err holds the cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var terr *Error
	if errors.As(err, &terr) {
		return terr.Kind
	}
	return KindUnknown
}

// UserMessage returns the user-facing message of err, or fallback when err is not classified.
func UserMessage(err error, fallback string) string {
	var terr *Error
	if errors.As(err, &terr) && terr.Message != "" {
		return terr.Message
	}
	return fallback
}
