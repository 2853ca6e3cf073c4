package slip

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/radieske/wisebet-storefront-poc/internal/faults"
	capi "github.com/radieske/wisebet-storefront-poc/pkg/contracts/api"
)

// Selection é uma escolha de outcome numa partida. Odds é snapshot do
// momento da seleção, não acompanha o mercado depois.
type Selection struct {
	MatchID     string
	Outcome     capi.Outcome
	Odds        float64
	HomeTeam    string
	AwayTeam    string
	Competition string
}

type PlacedBet struct {
	BetID  string
	Status string
}

// Submitter envia a múltipla pro endpoint de apostas.
type Submitter interface {
	PlaceBets(ctx context.Context, userID string, selections []Selection, stake, totalOdds, potential float64) (*PlacedBet, error)
}

// Session é o recorte do session manager que o slip enxerga.
type Session interface {
	Authenticated() bool
	User() *capi.User
}

// Slip acumula a aposta proposta pelo usuário. Invariante: no máximo uma
// seleção por matchId; a ordem é a de inserção e só importa pra exibição.
type Slip struct {
	mu         sync.Mutex
	selections []Selection
	stake      float64
	submitting bool

	session   Session
	submitter Submitter
	log       *zap.Logger
}

func New(session Session, submitter Submitter, log *zap.Logger) *Slip {
	return &Slip{session: session, submitter: submitter, log: log}
}

// Toggle aplica o contrato de três vias: sem seleção pra partida,
// adiciona; mesmo outcome, remove (deselect); outcome diferente, troca
// no lugar mantendo a posição.
func (s *Slip) Toggle(match capi.MatchData, outcome capi.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sel := range s.selections {
		if sel.MatchID != match.ID {
			continue
		}
		if sel.Outcome == outcome {
			s.selections = append(s.selections[:i], s.selections[i+1:]...)
			return
		}
		s.selections[i].Outcome = outcome
		s.selections[i].Odds = match.Odds.For(outcome)
		return
	}

	s.selections = append(s.selections, Selection{
		MatchID:     match.ID,
		Outcome:     outcome,
		Odds:        match.Odds.For(outcome),
		HomeTeam:    match.HomeTeam,
		AwayTeam:    match.AwayTeam,
		Competition: match.Competition,
	})
}

// Remove tira a seleção da partida; no-op quando ausente.
func (s *Slip) Remove(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sel := range s.selections {
		if sel.MatchID == matchID {
			s.selections = append(s.selections[:i], s.selections[i+1:]...)
			return
		}
	}
}

// SetStake rejeita valores negativos (política: rejeitar, não clampar).
// Não valida contra saldo; isso é papel do servidor.
func (s *Slip) SetStake(amount float64) error {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return &faults.ValidationError{Field: "stake", Message: "must be a non-negative amount"}
	}
	s.mu.Lock()
	s.stake = amount
	s.mu.Unlock()
	return nil
}

func (s *Slip) Stake() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stake
}

// Selections retorna uma cópia na ordem de inserção.
func (s *Slip) Selections() []Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Selection, len(s.selections))
	copy(out, s.selections)
	return out
}

// AggregateOdds é o produto das odds; 1.0 pro slip vazio (identidade
// multiplicativa, o cálculo de payout segue bem definido sem seleções).
func (s *Slip) AggregateOdds() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregateOddsLocked()
}

func (s *Slip) aggregateOddsLocked() float64 {
	total := 1.0
	for _, sel := range s.selections {
		total *= sel.Odds
	}
	return total
}

func (s *Slip) PotentialPayout() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stake * s.aggregateOddsLocked()
}

// FormatPayout renderiza o payout como moeda com duas casas.
func (s *Slip) FormatPayout() string {
	return fmt.Sprintf("%.2f", s.PotentialPayout())
}

func (s *Slip) Clear() {
	s.mu.Lock()
	s.selections = nil
	s.stake = 0
	s.mu.Unlock()
}

// Submit valida tudo do lado de cá antes de tocar a rede: sessão
// autenticada, stake > 0, slip não vazio e nenhuma submissão em voo.
// Sucesso limpa o slip; falha deixa ele intocado pro usuário tentar de
// novo.
func (s *Slip) Submit(ctx context.Context) (*PlacedBet, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, faults.ErrSubmitInFlight
	}
	if !s.session.Authenticated() {
		s.mu.Unlock()
		return nil, faults.ErrNotAuthenticated
	}
	if len(s.selections) == 0 {
		s.mu.Unlock()
		return nil, faults.ErrEmptySlip
	}
	if s.stake <= 0 {
		s.mu.Unlock()
		return nil, faults.ErrZeroStake
	}

	selections := make([]Selection, len(s.selections))
	copy(selections, s.selections)
	stake := s.stake
	totalOdds := s.aggregateOddsLocked()
	s.submitting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	user := s.session.User()
	placed, err := s.submitter.PlaceBets(ctx, user.ID, selections, stake, totalOdds, stake*totalOdds)
	if err != nil {
		return nil, err
	}

	s.Clear()
	s.log.Info("bet placed",
		zap.String("betId", placed.BetID),
		zap.Int("selections", len(selections)),
		zap.Float64("stake", stake),
		zap.Float64("totalOdds", totalOdds),
	)
	return placed, nil
}
