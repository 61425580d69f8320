package service

// Step is the coordinator's position in the checkout pipeline. Transitions
// only move through the table below; anything else is refused with
// ErrIllegalTransition.
type Step string

const (
	StepIdle                  Step = "idle"
	StepCollectingContactInfo Step = "collecting-contact-info"
	StepCollectingPayment     Step = "collecting-payment"
	StepCreatingBookings      Step = "creating-bookings"
	StepRequestingPayment     Step = "requesting-payment"
	StepConfirmingPayment     Step = "confirming-payment"
	StepCompleted             Step = "completed"
	StepFailed                Step = "failed"
)

var transitions = map[Step][]Step{
	StepIdle:                  {StepCollectingContactInfo},
	StepCollectingContactInfo: {StepCollectingPayment, StepFailed},
	StepCollectingPayment:     {StepCreatingBookings, StepFailed},
	StepCreatingBookings:      {StepRequestingPayment, StepFailed},
	StepRequestingPayment:     {StepConfirmingPayment, StepFailed},
	StepConfirmingPayment:     {StepCompleted, StepFailed},
	StepCompleted:             {},
	StepFailed:                {},
}

func (s Step) CanTransitionTo(next Step) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the attempt is over. Terminal attempts keep
// their record for inspection but never accept further input.
func (s Step) IsTerminal() bool {
	return s == StepCompleted || s == StepFailed
}

// InFlight reports whether side effects on collaborators may be in progress.
// A new checkout for the same user is refused while this holds.
func (s Step) InFlight() bool {
	switch s {
	case StepCreatingBookings, StepRequestingPayment, StepConfirmingPayment:
		return true
	}
	return false
}
