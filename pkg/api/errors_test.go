package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	verr := NewValidationError("pincode", "pincode must be a 6-digit number")
	nerr := &NetworkError{StatusCode: 500, Message: "internal server error"}
	serr := NewSessionError("token expired")

	require.True(t, IsValidationError(verr))
	require.False(t, IsValidationError(nerr))
	require.False(t, IsValidationError(serr))

	require.True(t, IsNetworkError(nerr))
	require.False(t, IsNetworkError(verr))

	require.True(t, IsSessionError(serr))
	require.False(t, IsSessionError(nerr))

	// Classification survives wrapping.
	wrapped := fmt.Errorf("submit address: %w", nerr)
	require.True(t, IsNetworkError(wrapped))
	require.False(t, IsSessionError(wrapped))
}

func TestNetworkErrorMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "server unreachable",
		(&NetworkError{Message: "server unreachable"}).Error())

	cause := errors.New("dial tcp: connection refused")
	e := &NetworkError{Err: cause}
	require.Equal(t, cause.Error(), e.Error())
	require.ErrorIs(t, e, cause)

	require.Equal(t, "request failed with status 502",
		(&NetworkError{StatusCode: 502}).Error())
}

func TestReason(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", Reason(nil))
	require.Equal(t, "email already registered",
		Reason(&NetworkError{StatusCode: 409, Message: "email already registered"}))
	require.Equal(t, "session is not authenticated", Reason(&SessionError{}))
	require.Equal(t, "boom", Reason(errors.New("boom")))
}

func TestRouteForStep(t *testing.T) {
	t.Parallel()

	require.Equal(t, RouteCommunityAddress, RouteForStep(StepAddress))
	require.Equal(t, RouteVerification, RouteForStep(StepVerification))
	require.Equal(t, RouteProfession, RouteForStep(StepProfession))
	require.Equal(t, RouteProfileUpdate, RouteForStep(StepProfileUpdate))
}

func TestStepsOrder(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		[]Step{StepAddress, StepVerification, StepProfession, StepProfileUpdate},
		Steps())
}

func TestSnapshotStepStatus(t *testing.T) {
	t.Parallel()

	snap := Snapshot{Steps: map[Step]StepState{
		StepAddress: {Step: StepAddress, Status: StatusSubmitted},
	}}
	require.Equal(t, StatusSubmitted, snap.StepStatus(StepAddress))
	require.Equal(t, StatusIdle, snap.StepStatus(StepProfession), "unknown steps default to idle")
}
