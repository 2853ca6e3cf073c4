package dto

type PlaceBetsResponse struct {
	BetID   string `json:"betId"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
