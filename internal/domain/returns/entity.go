// internal/domain/returns/entity.go
package returns

import (
	"time"

	"github.com/your-org/storefront/internal/domain/order"
)

// Status represents the state of a return request
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCompleted Status = "COMPLETED"
)

var statusLabels = map[Status]string{
	StatusRequested: "Request received",
	StatusApproved:  "Approved",
	StatusRejected:  "Rejected",
	StatusCompleted: "Completed",
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the human readable status
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Return is a server-owned return request
type Return struct {
	ID           string       `json:"id" validate:"required"`
	OrderID      string       `json:"orderId" validate:"required"`
	UserID       string       `json:"userId"`
	Reason       string       `json:"reason"`
	Status       Status       `json:"status" validate:"required,oneof=REQUESTED APPROVED REJECTED COMPLETED"`
	RefundAmount int64        `json:"refundAmount"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Order        *order.Order `json:"order,omitempty"`
}

// CreateRequest is the body for requesting a return
type CreateRequest struct {
	OrderID      string `json:"orderId" validate:"required"`
	Reason       string `json:"reason" validate:"required,max=1000"`
	RefundAmount int64  `json:"refundAmount" validate:"gte=0"`
}

// StatusUpdate is the body for changing a return status
type StatusUpdate struct {
	Status Status `json:"status" validate:"required,oneof=REQUESTED APPROVED REJECTED COMPLETED"`
}

// Filter narrows a return listing
type Filter struct {
	OrderID string
	Status  Status
	Skip    int
	Take    int
}
