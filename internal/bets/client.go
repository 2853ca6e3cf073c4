package bets

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/wisebet-storefront-poc/internal/api"
	betdto "github.com/radieske/wisebet-storefront-poc/internal/bets/dto"
	"github.com/radieske/wisebet-storefront-poc/internal/shared/metrics"
	"github.com/radieske/wisebet-storefront-poc/internal/slip"
	capi "github.com/radieske/wisebet-storefront-poc/pkg/contracts/api"
)

// Client fala com os endpoints de apostas (bearer). Implementa
// slip.Submitter.
type Client struct {
	api *api.Client
	log *zap.Logger
}

func New(apiClient *api.Client, log *zap.Logger) *Client {
	return &Client{api: apiClient, log: log}
}

// PlaceBets envia a múltipla. ExternalRef (uuid) permite ao servidor
// deduplicar reenvio do mesmo slip.
func (c *Client) PlaceBets(ctx context.Context, userID string, selections []slip.Selection, stake, totalOdds, potential float64) (*slip.PlacedBet, error) {
	req := betdto.PlaceBetsRequest{
		UserID:            userID,
		Bets:              make([]betdto.BetItem, 0, len(selections)),
		TotalAmount:       stake,
		TotalOdds:         totalOdds,
		PotentialWinnings: potential,
		ExternalRef:       uuid.NewString(),
	}
	for _, sel := range selections {
		req.Bets = append(req.Bets, betdto.BetItem{
			MatchID:     sel.MatchID,
			Type:        string(sel.Outcome),
			Odds:        sel.Odds,
			HomeTeam:    sel.HomeTeam,
			AwayTeam:    sel.AwayTeam,
			Competition: sel.Competition,
		})
	}

	var res betdto.PlaceBetsResponse
	if err := c.api.Post(ctx, "/bets/place", req, &res); err != nil {
		return nil, err
	}

	metrics.BetsPlaced.Inc()
	return &slip.PlacedBet{BetID: res.BetID, Status: res.Status}, nil
}

// History lista as múltiplas do usuário autenticado.
func (c *Client) History(ctx context.Context) ([]capi.MultipleBet, error) {
	var out []capi.MultipleBet
	if err := c.api.Get(ctx, "/bets/user", &out); err != nil {
		return nil, err
	}
	return out, nil
}
