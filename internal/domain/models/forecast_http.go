package models

// ForecastRequest is the query of GET /api/forecast. Day 0 means the day after
// the last observation.
type ForecastRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"omitempty,max=32,excludesall=/\\ "`
	Day    int    `query:"day" json:"day" validate:"gte=0,lte=100000"`
}

// ForecastResponse is the payload returned for a forecast.
type ForecastResponse struct {
	Symbol      string             `json:"symbol"`
	PredictDay  int                `json:"predict_day"`
	LastDate    string             `json:"last_date,omitempty"`
	Models      []string           `json:"models"`
	Predictions map[string]float64 `json:"predictions"`
	Cached      bool               `json:"cached"`
}

// NewForecastResponse converts a prediction result into its API payload.
func NewForecastResponse(r PredictionResult) ForecastResponse {
	out := ForecastResponse{
		Symbol:      r.Symbol,
		PredictDay:  r.TargetIndex,
		Models:      make([]string, 0, len(r.Estimates)),
		Predictions: r.AsMap(),
	}
	for _, e := range r.Estimates {
		out.Models = append(out.Models, e.Model)
	}
	if !r.LastDate.IsZero() {
		out.LastDate = r.LastDate.Format("2006-01-02")
	}
	return out
}
