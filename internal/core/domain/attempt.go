package domain

import "time"

// Delivery attempt statuses. 0 marks an attempt that has not yet reached
// the gateway; 200 marks a delivered message; any other positive value is
// the failure code the gateway reported last.
const (
	StatusPending   = 0
	StatusDelivered = 200
)

// DeliveryAttempt tracks one client's outcome for one mailing. A single
// record exists per (mailing, client) pair; the owning retry loop mutates
// it in place until the outcome is terminal, after which it is read-only
// statistics state. SendDate is set once, at the terminal transition.
type DeliveryAttempt struct {
	ID        int64
	MailingID int64
	ClientID  int64
	Status    int
	SendDate  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Delivered reports whether the attempt reached the recipient.
func (a *DeliveryAttempt) Delivered() bool {
	return a.Status == StatusDelivered
}

// Outcome is the terminal state of a delivery loop. No retries follow any
// of these.
type Outcome int

const (
	OutcomeDelivered Outcome = iota
	OutcomeExpired
	OutcomeErrored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeExpired:
		return "expired"
	case OutcomeErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// BatchOutcome classifies a whole dispatch after every launched loop has
// settled.
type BatchOutcome int

const (
	BatchAllDelivered BatchOutcome = iota
	BatchPartial
)

func (b BatchOutcome) String() string {
	if b == BatchAllDelivered {
		return "all delivered"
	}
	return "partial"
}
