package risk

import (
	"github.com/Alias1177/TokenScout/models"
)

// PointsPerFactor is awarded for every passed check
const PointsPerFactor = 20

// Advice texts
const (
	AdviceAvoid         = "High risk. Avoid."
	AdviceHighPotential = "Strong metrics. Still DYOR before buying."
	AdvicePossible      = "Medium risk. DYOR."
	AdviceRisky         = "Weak metrics. Trade with extreme caution."
)

// Thresholds configures the scoring checks.
// Tax limits are inclusive, the USD minimums are strict.
type Thresholds struct {
	MaxBuyTaxPercent  float64
	MaxSellTaxPercent float64
	MinLiquidityUSD   float64
	MinMarketCapUSD   float64
	MinVolume24hUSD   float64
	HighPotentialAt   int
	PossibleAt        int
}

// DefaultThresholds returns the stock scoring constants
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxBuyTaxPercent:  5,
		MaxSellTaxPercent: 5,
		MinLiquidityUSD:   100_000,
		MinMarketCapUSD:   1_000_000,
		MinVolume24hUSD:   50_000,
		HighPotentialAt:   80,
		PossibleAt:        60,
	}
}

// Scorer computes RiskAssessments. It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	thresholds Thresholds
}

// NewScorer creates a scorer with the given thresholds
func NewScorer(thresholds Thresholds) *Scorer {
	return &Scorer{thresholds: thresholds}
}

// Thresholds returns the configured thresholds
func (s *Scorer) Thresholds() Thresholds {
	return s.thresholds
}

// Score applies the five checks to t and maps the total to a tier.
// Honeypot and owner balance control override the advice but never the tier.
func (s *Scorer) Score(t models.NormalizedToken) models.RiskAssessment {
	th := s.thresholds

	factors := []models.Factor{
		check(models.FactorBuyTax, t.BuyTaxPercent <= th.MaxBuyTaxPercent, t.BuyTaxPercent, th.MaxBuyTaxPercent),
		check(models.FactorSellTax, t.SellTaxPercent <= th.MaxSellTaxPercent, t.SellTaxPercent, th.MaxSellTaxPercent),
		check(models.FactorLiquidity, t.LiquidityUSD > th.MinLiquidityUSD, t.LiquidityUSD, th.MinLiquidityUSD),
		check(models.FactorMarketCap, t.MarketCapUSD > th.MinMarketCapUSD, t.MarketCapUSD, th.MinMarketCapUSD),
		check(models.FactorVolume, t.Volume24hUSD > th.MinVolume24hUSD, t.Volume24hUSD, th.MinVolume24hUSD),
	}

	points := 0
	for _, f := range factors {
		points += f.Points
	}

	tier := s.TierFor(points)
	assessment := models.RiskAssessment{
		Score:   points,
		Tier:    tier,
		Advice:  tierAdvice(tier),
		Factors: factors,
	}

	if t.IsHoneypot {
		assessment.Flags = append(assessment.Flags, models.FlagHoneypot)
	}
	if t.OwnerCanManipulateBalance {
		assessment.Flags = append(assessment.Flags, models.FlagOwnerChangeBalance)
	}
	if len(assessment.Flags) > 0 {
		assessment.Advice = AdviceAvoid
	}

	return assessment
}

// TierFor maps a point total to a tier
func (s *Scorer) TierFor(points int) models.Tier {
	switch {
	case points >= s.thresholds.HighPotentialAt:
		return models.TierHighPotential
	case points >= s.thresholds.PossibleAt:
		return models.TierPossible
	default:
		return models.TierRisky
	}
}

var defaultScorer = NewScorer(DefaultThresholds())

// Score scores t with the default thresholds
func Score(t models.NormalizedToken) models.RiskAssessment {
	return defaultScorer.Score(t)
}

// TierFor maps points to a tier with the default boundaries
func TierFor(points int) models.Tier {
	return defaultScorer.TierFor(points)
}

func check(name string, passed bool, value, threshold float64) models.Factor {
	f := models.Factor{
		Name:      name,
		Passed:    passed,
		Value:     value,
		Threshold: threshold,
	}
	if passed {
		f.Points = PointsPerFactor
	}
	return f
}

func tierAdvice(tier models.Tier) string {
	switch tier {
	case models.TierHighPotential:
		return AdviceHighPotential
	case models.TierPossible:
		return AdvicePossible
	default:
		return AdviceRisky
	}
}
