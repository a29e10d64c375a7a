package fulfillment

import "errors"

// ErrFulfillmentFailed marks a transactional failure. Business rejections
// are reported through the result and never wrap this error.
var ErrFulfillmentFailed = errors.New("fulfillment failed")

// ErrInvalidDecrement is returned by stores asked to decrement stock by a
// non-positive amount.
var ErrInvalidDecrement = errors.New("stock decrement must be positive")

const (
	ReasonInvalidInput    = "invalid input"
	ReasonProductNotFound = "Product not found"
)

const (
	MessageOrderCreated  = "Order created successfully"
	MessageNoneFulfilled = "No items could be fulfilled"
	MessageNoValidItems  = "No valid items requested"
)
