// Package analysis defines the composite signal types produced by scoring.
package analysis

// SignalRecommendation is the categorical reading of a composite score.
type SignalRecommendation string

const (
	StrongBuy  SignalRecommendation = "STRONG_BUY"
	Buy        SignalRecommendation = "BUY"
	WeakBuy    SignalRecommendation = "WEAK_BUY"
	Neutral    SignalRecommendation = "NEUTRAL"
	WeakSell   SignalRecommendation = "WEAK_SELL"
	Sell       SignalRecommendation = "SELL"
	StrongSell SignalRecommendation = "STRONG_SELL"
)

// SignalScore is a weighted composite of indicator readings.
// Score is in [-100, +100]; positive is bullish.
type SignalScore struct {
	Score          float64              `json:"score"`
	Recommendation SignalRecommendation `json:"recommendation"`
	Components     map[string]float64   `json:"components"`
	VolumeConfirm  bool                 `json:"volume_confirm"`
}
