package dto

// PlaceBetsRequest é o payload de POST /bets/place: a múltipla inteira,
// com os totais calculados no cliente (o servidor revalida).
type PlaceBetsRequest struct {
	UserID            string    `json:"userId"`
	Bets              []BetItem `json:"bets"`
	TotalAmount       float64   `json:"totalAmount"`
	TotalOdds         float64   `json:"totalOdds"`
	PotentialWinnings float64   `json:"potentialWinnings"`
	ExternalRef       string    `json:"externalRef"`
}

type BetItem struct {
	MatchID     string  `json:"matchId"`
	Type        string  `json:"type"` // "win" | "draw" | "lose"
	Odds        float64 `json:"odds"`
	HomeTeam    string  `json:"homeTeam"`
	AwayTeam    string  `json:"awayTeam"`
	Competition string  `json:"competition"`
}
