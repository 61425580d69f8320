package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStep_HappyPathIsLegal(t *testing.T) {
	path := []Step{
		StepIdle,
		StepCollectingContactInfo,
		StepCollectingPayment,
		StepCreatingBookings,
		StepRequestingPayment,
		StepConfirmingPayment,
		StepCompleted,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, path[i].CanTransitionTo(path[i+1]),
			"expected %s -> %s to be legal", path[i], path[i+1])
	}
}

func TestStep_FailureIsReachableFromEveryNonTerminalStepExceptIdle(t *testing.T) {
	for _, step := range []Step{
		StepCollectingContactInfo,
		StepCollectingPayment,
		StepCreatingBookings,
		StepRequestingPayment,
		StepConfirmingPayment,
	} {
		assert.True(t, step.CanTransitionTo(StepFailed), "expected %s -> failed to be legal", step)
	}
	assert.False(t, StepIdle.CanTransitionTo(StepFailed))
}

func TestStep_NoSkippingSteps(t *testing.T) {
	assert.False(t, StepIdle.CanTransitionTo(StepCollectingPayment))
	assert.False(t, StepCollectingContactInfo.CanTransitionTo(StepCreatingBookings))
	assert.False(t, StepCollectingPayment.CanTransitionTo(StepRequestingPayment))
	assert.False(t, StepCreatingBookings.CanTransitionTo(StepConfirmingPayment))
	assert.False(t, StepRequestingPayment.CanTransitionTo(StepCompleted))
}

func TestStep_NoGoingBack(t *testing.T) {
	assert.False(t, StepCollectingPayment.CanTransitionTo(StepCollectingContactInfo))
	assert.False(t, StepCreatingBookings.CanTransitionTo(StepCollectingPayment))
}

func TestStep_TerminalStepsAcceptNothing(t *testing.T) {
	all := []Step{
		StepIdle,
		StepCollectingContactInfo,
		StepCollectingPayment,
		StepCreatingBookings,
		StepRequestingPayment,
		StepConfirmingPayment,
		StepCompleted,
		StepFailed,
	}
	for _, next := range all {
		assert.False(t, StepCompleted.CanTransitionTo(next))
		assert.False(t, StepFailed.CanTransitionTo(next))
	}
	assert.True(t, StepCompleted.IsTerminal())
	assert.True(t, StepFailed.IsTerminal())
	assert.False(t, StepCollectingPayment.IsTerminal())
}

func TestStep_InFlightCoversCollaboratorSteps(t *testing.T) {
	assert.True(t, StepCreatingBookings.InFlight())
	assert.True(t, StepRequestingPayment.InFlight())
	assert.True(t, StepConfirmingPayment.InFlight())
	assert.False(t, StepIdle.InFlight())
	assert.False(t, StepCollectingContactInfo.InFlight())
	assert.False(t, StepCollectingPayment.InFlight())
	assert.False(t, StepCompleted.InFlight())
	assert.False(t, StepFailed.InFlight())
}
