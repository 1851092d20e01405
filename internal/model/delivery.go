package model

// FailureReason classifies a failed notification delivery.
type FailureReason string

const (
	FailureBlocked FailureReason = "blocked"
	FailureTimeout FailureReason = "timeout"
	FailureUnknown FailureReason = "unknown"
)

type DeliveryFailure struct {
	UserID int64         `json:"user_id"`
	Reason FailureReason `json:"reason"`
	Detail string        `json:"detail,omitempty"`
}

// DeliveryReport aggregates the outcome of one fan-out.
type DeliveryReport struct {
	EventID int64             `json:"event_id"`
	Total   int               `json:"total"`
	Sent    int               `json:"sent"`
	Reached []int64           `json:"reached,omitempty"`
	Failed  []DeliveryFailure `json:"failed"`
}

// CountReason returns how many failures carry the given reason.
func (r *DeliveryReport) CountReason(reason FailureReason) int {
	n := 0
	for _, f := range r.Failed {
		if f.Reason == reason {
			n++
		}
	}
	return n
}
