package api

// Tipos de wire da API externa do WiseBet, no formato exato que o backend
// retorna (camelCase e snake_case misturados, _id do Mongo).

type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	Balance       float64 `json:"balance"`
	IsVerified    bool    `json:"isVerified"`
	Has2FAEnabled bool    `json:"has2FAEnabled"`
	CreatedAt     string  `json:"createdAt"`
	LastLogin     string  `json:"lastLogin"`
}

// Outcome é a seleção possível num mercado 1x2.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeDraw Outcome = "draw"
	OutcomeLose Outcome = "lose"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeWin, OutcomeDraw, OutcomeLose:
		return true
	}
	return false
}

type MatchOdds struct {
	Win  float64 `json:"win"`
	Draw float64 `json:"draw"`
	Lose float64 `json:"lose"`
}

// For retorna a odd correspondente ao outcome.
func (m MatchOdds) For(o Outcome) float64 {
	switch o {
	case OutcomeWin:
		return m.Win
	case OutcomeDraw:
		return m.Draw
	case OutcomeLose:
		return m.Lose
	}
	return 0
}

type MatchData struct {
	ID          string    `json:"_id"`
	Sport       string    `json:"sport"`
	Competition string    `json:"competition"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	Odds        MatchOdds `json:"odds"`
	MatchTime   string    `json:"match_time"`
}

type TeamData struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Sport string `json:"sport"`
}

// MultipleBet é uma aposta múltipla já registrada no servidor.
type MultipleBet struct {
	ID                 string          `json:"_id"`
	TotalAmount        float64         `json:"totalAmount"`
	EstimatedTotalOdds float64         `json:"estimatedTotalOdds"`
	Status             string          `json:"status"`
	CreatedAt          string          `json:"createdAt"`
	IndividualBets     []IndividualBet `json:"individualBets"`
}

type IndividualBet struct {
	Market        BetMarket `json:"marketId"`
	Amount        float64   `json:"amount"`
	EstimatedOdds float64   `json:"estimatedOdds"`
	Status        string    `json:"status"`
}

// BetMarket é o resumo do mercado embutido no histórico de apostas.
type BetMarket struct {
	Sport       string `json:"sport"`
	Competition string `json:"competition"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	MatchTime   string `json:"match_time"`
}
