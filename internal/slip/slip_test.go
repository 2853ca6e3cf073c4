package slip

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/wisebet-storefront-poc/internal/faults"
	capi "github.com/radieske/wisebet-storefront-poc/pkg/contracts/api"
)

type stubSession struct {
	authed bool
	user   *capi.User
}

func (s *stubSession) Authenticated() bool { return s.authed }
func (s *stubSession) User() *capi.User    { return s.user }

type stubSubmitter struct {
	calls      atomic.Int32
	err        error
	block      chan struct{}
	lastUserID string
	lastStake  float64
	lastOdds   float64
}

func (s *stubSubmitter) PlaceBets(_ context.Context, userID string, sels []Selection, stake, totalOdds, potential float64) (*PlacedBet, error) {
	s.calls.Add(1)
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	s.lastUserID = userID
	s.lastStake = stake
	s.lastOdds = totalOdds
	return &PlacedBet{BetID: "bet-1", Status: "PENDING_CONFIRMATION"}, nil
}

func match(id string, win, draw, lose float64) capi.MatchData {
	return capi.MatchData{
		ID:          id,
		Sport:       "Football",
		Competition: "Premier League",
		HomeTeam:    "Home " + id,
		AwayTeam:    "Away " + id,
		Odds:        capi.MatchOdds{Win: win, Draw: draw, Lose: lose},
	}
}

func newTestSlip(sess Session, sub Submitter) *Slip {
	return New(sess, sub, zap.NewNop())
}

func TestToggleThreeWayContract(t *testing.T) {
	s := newTestSlip(&stubSession{}, &stubSubmitter{})
	m := match("m1", 2.0, 3.0, 4.0)

	// sem seleção: adiciona
	s.Toggle(m, capi.OutcomeWin)
	sels := s.Selections()
	require.Len(t, sels, 1)
	assert.Equal(t, capi.OutcomeWin, sels[0].Outcome)
	assert.Equal(t, 2.0, sels[0].Odds)

	// outcome irmão: troca no lugar
	s.Toggle(m, capi.OutcomeDraw)
	sels = s.Selections()
	require.Len(t, sels, 1)
	assert.Equal(t, capi.OutcomeDraw, sels[0].Outcome)
	assert.Equal(t, 3.0, sels[0].Odds)

	// mesmo outcome: remove
	s.Toggle(m, capi.OutcomeDraw)
	assert.Empty(t, s.Selections())
}

func TestToggleKeepsInsertionOrderOnSwap(t *testing.T) {
	s := newTestSlip(&stubSession{}, &stubSubmitter{})
	m1 := match("m1", 2.0, 3.0, 4.0)
	m2 := match("m2", 1.5, 3.2, 5.0)

	s.Toggle(m1, capi.OutcomeWin)
	s.Toggle(m2, capi.OutcomeWin)
	s.Toggle(m1, capi.OutcomeLose)

	sels := s.Selections()
	require.Len(t, sels, 2)
	assert.Equal(t, "m1", sels[0].MatchID)
	assert.Equal(t, capi.OutcomeLose, sels[0].Outcome)
	assert.Equal(t, "m2", sels[1].MatchID)
}

func TestToggleAtMostOneSelectionPerMatch(t *testing.T) {
	s := newTestSlip(&stubSession{}, &stubSubmitter{})
	m1 := match("m1", 2.0, 3.0, 4.0)
	m2 := match("m2", 1.5, 3.2, 5.0)

	outcomes := []capi.Outcome{capi.OutcomeWin, capi.OutcomeDraw, capi.OutcomeLose,
		capi.OutcomeWin, capi.OutcomeDraw, capi.OutcomeWin}
	for _, o := range outcomes {
		s.Toggle(m1, o)
		s.Toggle(m2, o)
	}

	seen := map[string]int{}
	for _, sel := range s.Selections() {
		seen[sel.MatchID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "match %s duplicated", id)
	}
}

func TestToggleTwiceReturnsPriorState(t *testing.T) {
	s := newTestSlip(&stubSession{}, &stubSubmitter{})
	m1 := match("m1", 2.0, 3.0, 4.0)
	m2 := match("m2", 1.5, 3.2, 5.0)

	s.Toggle(m1, capi.OutcomeWin)
	before := s.Selections()

	// duas aplicações do mesmo par (match, outcome) voltam ao estado anterior
	s.Toggle(m2, capi.OutcomeDraw)
	s.Toggle(m2, capi.OutcomeDraw)

	assert.Equal(t, before, s.Selections())
}

func TestAggregateOdds(t *testing.T) {
	s := newTestSlip(&stubSession{}, &stubSubmitter{})

	// slip vazio: identidade multiplicativa
	assert.Equal(t, 1.0, s.AggregateOdds())

	s.Toggle(match("m1", 2.0, 0, 0), capi.OutcomeWin)
	s.Toggle(match("m2", 3.5, 0, 0), capi.OutcomeWin)
	assert.InDelta(t, 7.0, s.AggregateOdds(), 1e-9)
}

func TestPotentialPayout(t *testing.T) {
	s := newTestSlip(&stubSession{}, &stubSubmitter{})
	s.Toggle(match("m1", 2.0, 0, 0), capi.OutcomeWin)
	s.Toggle(match("m2", 3.5, 0, 0), capi.OutcomeWin)
	require.NoError(t, s.SetStake(10))

	assert.InDelta(t, 70.0, s.PotentialPayout(), 1e-9)
	assert.Equal(t, "70.00", s.FormatPayout())
}

func TestSetStakeRejectsNegative(t *testing.T) {
	s := newTestSlip(&stubSession{}, &stubSubmitter{})

	err := s.SetStake(-1)
	var v *faults.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "stake", v.Field)
	assert.Equal(t, 0.0, s.Stake())

	require.NoError(t, s.SetStake(0))
	require.NoError(t, s.SetStake(25.5))
	assert.Equal(t, 25.5, s.Stake())
}

func TestSubmitGuardsRunBeforeAnyNetworkCall(t *testing.T) {
	user := &capi.User{ID: "u1", Username: "alice"}

	t.Run("unauthenticated", func(t *testing.T) {
		sub := &stubSubmitter{}
		s := newTestSlip(&stubSession{authed: false}, sub)
		s.Toggle(match("m1", 2.0, 0, 0), capi.OutcomeWin)
		require.NoError(t, s.SetStake(10))

		_, err := s.Submit(context.Background())
		assert.ErrorIs(t, err, faults.ErrNotAuthenticated)
		assert.Zero(t, sub.calls.Load())
	})

	t.Run("empty slip", func(t *testing.T) {
		sub := &stubSubmitter{}
		s := newTestSlip(&stubSession{authed: true, user: user}, sub)
		require.NoError(t, s.SetStake(10))

		_, err := s.Submit(context.Background())
		assert.ErrorIs(t, err, faults.ErrEmptySlip)
		assert.Zero(t, sub.calls.Load())
	})

	t.Run("zero stake", func(t *testing.T) {
		sub := &stubSubmitter{}
		s := newTestSlip(&stubSession{authed: true, user: user}, sub)
		s.Toggle(match("m1", 2.0, 0, 0), capi.OutcomeWin)

		_, err := s.Submit(context.Background())
		assert.ErrorIs(t, err, faults.ErrZeroStake)
		assert.Zero(t, sub.calls.Load())
	})
}

func TestSubmitSuccessClearsSlip(t *testing.T) {
	sub := &stubSubmitter{}
	s := newTestSlip(&stubSession{authed: true, user: &capi.User{ID: "u1"}}, sub)
	s.Toggle(match("m1", 2.0, 0, 0), capi.OutcomeWin)
	s.Toggle(match("m2", 3.5, 0, 0), capi.OutcomeWin)
	require.NoError(t, s.SetStake(10))

	placed, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bet-1", placed.BetID)
	assert.Equal(t, "u1", sub.lastUserID)
	assert.InDelta(t, 10.0, sub.lastStake, 1e-9)
	assert.InDelta(t, 7.0, sub.lastOdds, 1e-9)

	assert.Empty(t, s.Selections())
	assert.Equal(t, 0.0, s.Stake())
}

func TestSubmitFailureLeavesSlipUntouched(t *testing.T) {
	sub := &stubSubmitter{err: errors.New("boom")}
	s := newTestSlip(&stubSession{authed: true, user: &capi.User{ID: "u1"}}, sub)
	s.Toggle(match("m1", 2.0, 0, 0), capi.OutcomeWin)
	require.NoError(t, s.SetStake(10))

	_, err := s.Submit(context.Background())
	require.Error(t, err)

	assert.Len(t, s.Selections(), 1)
	assert.Equal(t, 10.0, s.Stake())
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	sub := &stubSubmitter{block: make(chan struct{})}
	s := newTestSlip(&stubSession{authed: true, user: &capi.User{ID: "u1"}}, sub)
	s.Toggle(match("m1", 2.0, 0, 0), capi.OutcomeWin)
	require.NoError(t, s.SetStake(10))

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	// espera a primeira submissão ficar em voo
	require.Eventually(t, func() bool { return sub.calls.Load() == 1 }, time.Second, time.Millisecond)

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, faults.ErrSubmitInFlight)

	close(sub.block)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), sub.calls.Load())
}
