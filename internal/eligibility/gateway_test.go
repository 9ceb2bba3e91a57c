package eligibility_test

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks RemoteScorer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"hemolink/internal/eligibility"
	"hemolink/internal/eligibility/mocks"
	"hemolink/internal/healthtext"
)

type GatewaySuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	remote  *mocks.MockRemoteScorer
	gateway *eligibility.Gateway
}

func (s *GatewaySuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.remote = mocks.NewMockRemoteScorer(s.ctrl)
	s.gateway = eligibility.NewGateway(
		s.remote,
		eligibility.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *GatewaySuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) TestEvaluateRemoteSuccess() {
	in := eligibility.Input{DaysSinceLastDonation: 120, DistanceKm: 3, AvailableNow: true}
	s.remote.EXPECT().
		Predict(gomock.Any(), in).
		Return(eligibility.Result{Score: 88, Reasons: []string{"Model assessment"}}, nil)

	got := s.gateway.Evaluate(context.Background(), in)

	s.Equal(88, got.Score)
	s.Equal([]string{"Model assessment"}, got.Reasons)
	s.Equal(eligibility.SourceRemote, got.Source)
}

// Invariant: remote failure must never surface to callers. The gateway
// degrades to the rule engine and returns exactly what a local evaluation
// would have.
func (s *GatewaySuite) TestEvaluateRemoteFailureFallsBack() {
	in := eligibility.Input{DaysSinceLastDonation: 120, DistanceKm: 3, AvailableNow: true}
	s.remote.EXPECT().
		Predict(gomock.Any(), in).
		Return(eligibility.Result{}, errors.New("connection refused"))

	got := s.gateway.Evaluate(context.Background(), in)

	s.Equal(eligibility.Score(in), got)
	s.Equal(eligibility.SourceLocal, got.Source)
}

func (s *GatewaySuite) TestEvaluateClampsRemoteScore() {
	s.T().Run("above range", func(t *testing.T) {
		in := eligibility.Input{DaysSinceLastDonation: 100}
		s.remote.EXPECT().
			Predict(gomock.Any(), in).
			Return(eligibility.Result{Score: 250, Reasons: []string{"x"}}, nil)

		got := s.gateway.Evaluate(context.Background(), in)
		assert.Equal(t, eligibility.MaxScore, got.Score)
	})

	s.T().Run("below range", func(t *testing.T) {
		in := eligibility.Input{DaysSinceLastDonation: 100}
		s.remote.EXPECT().
			Predict(gomock.Any(), in).
			Return(eligibility.Result{Score: -7, Reasons: []string{"x"}}, nil)

		got := s.gateway.Evaluate(context.Background(), in)
		assert.Equal(t, eligibility.MinScore, got.Score)
	})
}

// Invariant: reasons are never empty, whichever path served the score.
func (s *GatewaySuite) TestEvaluateFillsEmptyRemoteReasons() {
	in := eligibility.Input{DaysSinceLastDonation: 70, DistanceKm: 12, AvailableNow: true}
	s.remote.EXPECT().
		Predict(gomock.Any(), in).
		Return(eligibility.Result{Score: 70}, nil)

	got := s.gateway.Evaluate(context.Background(), in)

	s.Require().NotEmpty(got.Reasons)
	s.Equal(eligibility.Explain(in, 70), got.Reasons)
	s.Equal(eligibility.SourceRemote, got.Source)
}

// Without the narrative the model only saw categorical flags, so the gateway
// re-imposes the serious-condition ceiling on whatever it returned.
func (s *GatewaySuite) TestEvaluateReappliesSeriousCap() {
	in := eligibility.Input{
		DaysSinceLastDonation: 120,
		DistanceKm:            2,
		AvailableNow:          true,
		HealthFlags:           []healthtext.Flag{healthtext.FlagSeriousCondition},
	}
	s.remote.EXPECT().
		Predict(gomock.Any(), in).
		Return(eligibility.Result{Score: 90, Reasons: []string{"Model assessment"}}, nil)

	got := s.gateway.Evaluate(context.Background(), in)

	s.Equal(15, got.Score)
	s.Equal([]string{eligibility.SeriousConditionReason}, got.Reasons)
}

// A narrative runs the full pipeline: override check, flag derivation, then
// prediction with the derived flags. The model saw the complete text, so its
// judgment stands even when the serious flag comes out of derivation.
func (s *GatewaySuite) TestEvaluateNarrativeRunsFullPipeline() {
	narrative := "cancer survivor, in remission five years, cleared by physician"
	in := eligibility.Input{
		DaysSinceLastDonation: 120,
		DistanceKm:            2,
		AvailableNow:          true,
		HealthSummary:         narrative,
	}

	scored := in
	scored.HealthFlags = []healthtext.Flag{healthtext.FlagSeriousCondition}

	s.remote.EXPECT().
		CheckOverride(gomock.Any(), narrative).
		Return(eligibility.OverrideDecision{}, nil)
	s.remote.EXPECT().
		NormalizeHealth(gomock.Any(), narrative).
		Return([]healthtext.Flag{healthtext.FlagSeriousCondition}, nil)
	s.remote.EXPECT().
		Predict(gomock.Any(), scored).
		Return(eligibility.Result{Score: 85, Reasons: []string{"Cleared by full review"}}, nil)

	got := s.gateway.Evaluate(context.Background(), in)

	s.Equal(85, got.Score)
	s.Equal([]string{"Cleared by full review"}, got.Reasons)
	s.Equal(eligibility.SourceRemote, got.Source)
}

// An override hit ends the evaluation before any scoring. The mock controller
// fails the test if Predict or NormalizeHealth get dialed afterwards.
func (s *GatewaySuite) TestEvaluateOverrideShortCircuits() {
	narrative := "currently undergoing chemotherapy"
	in := eligibility.Input{
		DaysSinceLastDonation: 120,
		DistanceKm:            1,
		AvailableNow:          true,
		HealthSummary:         narrative,
	}
	s.remote.EXPECT().
		CheckOverride(gomock.Any(), narrative).
		Return(eligibility.OverrideDecision{
			Overridden: true,
			Score:      eligibility.OverrideScore,
			Reason:     eligibility.SeriousConditionReason,
		}, nil)

	got := s.gateway.Evaluate(context.Background(), in)

	s.Equal(eligibility.OverrideScore, got.Score)
	s.Equal([]string{eligibility.SeriousConditionReason}, got.Reasons)
	s.Equal(eligibility.SourceRemote, got.Source)
}

// A failed override check must not block the evaluation; the pipeline carries
// on to flag derivation and scoring.
func (s *GatewaySuite) TestEvaluateOverrideFailureProceedsToScoring() {
	narrative := "had a fever last week"
	in := eligibility.Input{DaysSinceLastDonation: 95, DistanceKm: 3, HealthSummary: narrative}

	scored := in
	scored.HealthFlags = []healthtext.Flag{healthtext.FlagRecentIllness}

	s.remote.EXPECT().
		CheckOverride(gomock.Any(), narrative).
		Return(eligibility.OverrideDecision{}, errors.New("unreachable"))
	s.remote.EXPECT().
		NormalizeHealth(gomock.Any(), narrative).
		Return([]healthtext.Flag{healthtext.FlagRecentIllness}, nil)
	s.remote.EXPECT().
		Predict(gomock.Any(), scored).
		Return(eligibility.Result{Score: 60, Reasons: []string{"Model assessment"}}, nil)

	got := s.gateway.Evaluate(context.Background(), in)

	s.Equal(60, got.Score)
	s.Equal(eligibility.SourceRemote, got.Source)
}

// Stored flags are only a fallback; a present narrative re-derives them so
// stale stored data cannot leak into the score.
func (s *GatewaySuite) TestEvaluateNarrativeSupersedesStoredFlags() {
	narrative := "fully recovered, no complaints"
	in := eligibility.Input{
		DaysSinceLastDonation: 100,
		HealthFlags:           []healthtext.Flag{healthtext.FlagDiabetes, healthtext.FlagBP},
		HealthSummary:         narrative,
	}

	scored := in
	scored.HealthFlags = nil

	s.remote.EXPECT().
		CheckOverride(gomock.Any(), narrative).
		Return(eligibility.OverrideDecision{}, nil)
	s.remote.EXPECT().
		NormalizeHealth(gomock.Any(), narrative).
		Return(nil, nil)
	s.remote.EXPECT().
		Predict(gomock.Any(), scored).
		Return(eligibility.Result{Score: 80, Reasons: []string{"Model assessment"}}, nil)

	got := s.gateway.Evaluate(context.Background(), in)

	s.Equal(80, got.Score)
}

func (s *GatewaySuite) TestNormalizeHealthRemoteSuccess() {
	s.remote.EXPECT().
		NormalizeHealth(gomock.Any(), "sugar problems").
		Return([]healthtext.Flag{healthtext.FlagDiabetes}, nil)

	got := s.gateway.NormalizeHealth(context.Background(), "sugar problems")

	s.Equal([]healthtext.Flag{healthtext.FlagDiabetes}, got)
}

func (s *GatewaySuite) TestNormalizeHealthFallsBackToKeywords() {
	s.remote.EXPECT().
		NormalizeHealth(gomock.Any(), "I have diabetes").
		Return(nil, errors.New("timeout"))

	got := s.gateway.NormalizeHealth(context.Background(), "I have diabetes")

	s.Equal([]healthtext.Flag{healthtext.FlagDiabetes}, got)
}

// Empty text must not dial the remote service at all. The mock would fail
// the test on any unexpected call.
func (s *GatewaySuite) TestNormalizeHealthEmptyTextSkipsRemote() {
	s.Empty(s.gateway.NormalizeHealth(context.Background(), ""))
	s.Empty(s.gateway.NormalizeHealth(context.Background(), "   \n\t"))
}

func (s *GatewaySuite) TestCheckOverrideRemoteDecisionStands() {
	s.remote.EXPECT().
		CheckOverride(gomock.Any(), "recovering from major surgery").
		Return(eligibility.OverrideDecision{
			Overridden: true,
			Score:      eligibility.OverrideScore,
			Reason:     "Recent major surgery",
		}, nil)

	got := s.gateway.CheckOverride(context.Background(), "recovering from major surgery")

	s.True(got.Overridden)
	s.Equal(eligibility.OverrideScore, got.Score)
	s.Equal("Recent major surgery", got.Reason)
}

// The override check has no rule-based equivalent. Any remote failure
// resolves to not-overridden, even for text the keyword matcher would flag
// as serious; the flag pipeline still caps such donors downstream.
func (s *GatewaySuite) TestCheckOverrideFailsOpen() {
	s.remote.EXPECT().
		CheckOverride(gomock.Any(), "diagnosed with leukemia").
		Return(eligibility.OverrideDecision{}, errors.New("unreachable"))

	got := s.gateway.CheckOverride(context.Background(), "diagnosed with leukemia")

	s.False(got.Overridden)
	s.Empty(got.Reason)
}

func (s *GatewaySuite) TestCheckOverrideEmptyTextSkipsRemote() {
	got := s.gateway.CheckOverride(context.Background(), "")

	s.False(got.Overridden)
	s.Empty(got.Reason)
}

func TestGatewayWithoutRemote(t *testing.T) {
	gw := eligibility.NewGateway(nil)
	in := eligibility.Input{DaysSinceLastDonation: 95, DistanceKm: 4, AvailableNow: true}

	t.Run("reports remote disabled", func(t *testing.T) {
		assert.False(t, gw.RemoteEnabled())
	})

	t.Run("evaluate uses local rules", func(t *testing.T) {
		got := gw.Evaluate(context.Background(), in)
		assert.Equal(t, eligibility.Score(in), got)
		assert.Equal(t, eligibility.SourceLocal, got.Source)
	})

	t.Run("evaluate derives flags from narrative locally", func(t *testing.T) {
		flagged := in
		flagged.HealthSummary = "undergoing chemotherapy and feeling weak"

		got := gw.Evaluate(context.Background(), flagged)
		assert.Equal(t, 15, got.Score)
		assert.Equal(t, []string{eligibility.SeriousConditionReason}, got.Reasons)
		assert.Equal(t, eligibility.SourceLocal, got.Source)
	})

	t.Run("normalize uses keyword matcher", func(t *testing.T) {
		got := gw.NormalizeHealth(context.Background(), "high bp and on medication")
		assert.Equal(t, []healthtext.Flag{healthtext.FlagBP, healthtext.FlagMedication}, got)
	})

	t.Run("override never fires", func(t *testing.T) {
		got := gw.CheckOverride(context.Background(), "undergoing chemotherapy")
		assert.False(t, got.Overridden)
	})
}
