package inference_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"hemolink/internal/eligibility"
	"hemolink/internal/eligibility/mocks"
	"hemolink/internal/inference"
	dErrors "hemolink/pkg/domain-errors"
	"hemolink/pkg/platform/circuit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResilientPassesThroughWhileClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := mocks.NewMockRemoteScorer(ctrl)
	delegate.EXPECT().
		Predict(gomock.Any(), gomock.Any()).
		Return(eligibility.Result{Score: 70, Reasons: []string{"ok"}}, nil)

	r := inference.NewResilient(delegate, discardLogger())

	got, err := r.Predict(context.Background(), eligibility.Input{})

	require.NoError(t, err)
	assert.Equal(t, 70, got.Score)
}

// After the failure threshold the circuit opens and calls stop reaching the
// delegate. The Times(2) expectation enforces that no third dial happens.
func TestResilientShortCircuitsWhenOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := mocks.NewMockRemoteScorer(ctrl)
	boom := errors.New("connection refused")
	delegate.EXPECT().
		Predict(gomock.Any(), gomock.Any()).
		Return(eligibility.Result{}, boom).
		Times(2)

	r := inference.NewResilient(delegate, discardLogger(),
		inference.WithBreaker(circuit.New("inference",
			circuit.WithFailureThreshold(2),
			circuit.WithProbeInterval(time.Hour),
		)),
	)

	for i := 0; i < 2; i++ {
		_, err := r.Predict(context.Background(), eligibility.Input{})
		require.ErrorIs(t, err, boom)
	}

	_, err := r.Predict(context.Background(), eligibility.Input{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable), "got %v", err)
}

// One probe per interval reaches the delegate; a successful probe closes the
// circuit and traffic flows again.
func TestResilientProbesAndRecloses(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := mocks.NewMockRemoteScorer(ctrl)
	gomock.InOrder(
		delegate.EXPECT().
			Predict(gomock.Any(), gomock.Any()).
			Return(eligibility.Result{}, errors.New("down")).
			Times(2),
		delegate.EXPECT().
			Predict(gomock.Any(), gomock.Any()).
			Return(eligibility.Result{Score: 70, Reasons: []string{"ok"}}, nil).
			Times(2),
	)

	r := inference.NewResilient(delegate, discardLogger(),
		inference.WithBreaker(circuit.New("inference",
			circuit.WithFailureThreshold(2),
			circuit.WithSuccessThreshold(1),
			circuit.WithProbeInterval(time.Nanosecond),
		)),
	)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := r.Predict(ctx, eligibility.Input{})
		require.Error(t, err)
	}

	time.Sleep(time.Millisecond)
	got, err := r.Predict(ctx, eligibility.Input{})
	require.NoError(t, err)
	assert.Equal(t, 70, got.Score)

	_, err = r.Predict(ctx, eligibility.Input{})
	require.NoError(t, err)
}

// All three operations share one breaker: failures on Predict open the
// circuit for NormalizeHealth and CheckOverride too.
func TestResilientBreakerSharedAcrossOperations(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := mocks.NewMockRemoteScorer(ctrl)
	delegate.EXPECT().
		Predict(gomock.Any(), gomock.Any()).
		Return(eligibility.Result{}, errors.New("down"))

	r := inference.NewResilient(delegate, discardLogger(),
		inference.WithBreaker(circuit.New("inference",
			circuit.WithFailureThreshold(1),
			circuit.WithProbeInterval(time.Hour),
		)),
	)
	ctx := context.Background()

	_, err := r.Predict(ctx, eligibility.Input{})
	require.Error(t, err)

	_, err = r.NormalizeHealth(ctx, "some text")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable), "got %v", err)

	_, err = r.CheckOverride(ctx, "some text")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable), "got %v", err)
}
