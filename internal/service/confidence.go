package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"backtest-engine/config"
	"backtest-engine/internal/dto"
	"backtest-engine/internal/repository"
	"backtest-engine/pkg/logger"
	"backtest-engine/pkg/utils"
)

// Factor weights for the composite confidence score. They sum to 1.0 and
// are part of the published contract.
const (
	WeightTickerHistory     = 0.20
	WeightSetupHistory      = 0.20
	WeightRegimeAlignment   = 0.25
	WeightSentimentStrength = 0.15
	WeightPricingEdge       = 0.10
	WeightFactorAgreement   = 0.10
)

// minTradesForHistory is the smallest sample a historical win rate is
// trusted at; below that the factor stays neutral.
const minTradesForHistory = 3

const neutralScore = 50

// ScoreContext optionally supplies the inputs the scorer would otherwise
// fetch itself, letting the orchestrator (and tests) avoid extra I/O.
type ScoreContext struct {
	ClosedPositions []dto.ClosedPosition
	Regime          *dto.RegimeSignal
}

// ConfidenceService scores prospective plays 0-100 from six weighted
// factors. Missing data never fails a scoring call: every factor degrades
// to neutral.
type ConfidenceService interface {
	Score(ctx context.Context, play dto.Play, scoreCtx *ScoreContext) (*dto.ConfidenceScore, error)
}

type confidenceService struct {
	cfg                *config.Config
	logger             *logger.Logger
	missionControlRepo repository.MissionControlRepository
	regimeRepo         repository.RegimeRepository
}

func NewConfidenceService(
	cfg *config.Config,
	log *logger.Logger,
	missionControlRepo repository.MissionControlRepository,
	regimeRepo repository.RegimeRepository,
) ConfidenceService {
	return &confidenceService{
		cfg:                cfg,
		logger:             log,
		missionControlRepo: missionControlRepo,
		regimeRepo:         regimeRepo,
	}
}

func (s *confidenceService) Score(ctx context.Context, play dto.Play, scoreCtx *ScoreContext) (*dto.ConfidenceScore, error) {
	s.logger.InfoContext(ctx, "Computing confidence",
		logger.StringField("ticker", play.Ticker),
		logger.StringField("setup", play.Strategy),
	)

	var closedPositions []dto.ClosedPosition
	var regime *dto.RegimeSignal
	if scoreCtx != nil {
		closedPositions = scoreCtx.ClosedPositions
		regime = scoreCtx.Regime
	}

	if len(closedPositions) == 0 {
		positions, err := s.missionControlRepo.GetClosedPositions(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to load closed positions, scoring without history", logger.ErrorField(err))
		} else {
			closedPositions = positions
		}
	}

	if regime == nil {
		signal, err := s.regimeRepo.GetCurrentSignal(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to load regime signal, scoring without regime", logger.ErrorField(err))
		} else {
			regime = signal
		}
	}

	ticker := scoreTickerHistory(play.Ticker, closedPositions)
	setup := scoreSetupHistory(play.Strategy, closedPositions)
	regimeAlign := scoreRegimeAlignment(play.Direction, regime)
	sentiment := scoreSentimentStrength(play)
	pricing := scorePricingEdge(play)
	agreement := scoreFactorAgreement([]dto.FactorScore{ticker, setup, regimeAlign, sentiment, pricing})

	composite := ticker.Score*WeightTickerHistory +
		setup.Score*WeightSetupHistory +
		regimeAlign.Score*WeightRegimeAlignment +
		sentiment.Score*WeightSentimentStrength +
		pricing.Score*WeightPricingEdge +
		agreement.Score*WeightFactorAgreement

	finalScore := int(utils.Clamp(math.Round(composite), 0, 100))

	ticker.Weight = WeightTickerHistory
	setup.Weight = WeightSetupHistory
	regimeAlign.Weight = WeightRegimeAlignment
	sentiment.Weight = WeightSentimentStrength
	pricing.Weight = WeightPricingEdge
	agreement.Weight = WeightFactorAgreement

	result := &dto.ConfidenceScore{
		Score:     finalScore,
		Grade:     GradeForScore(finalScore),
		Ticker:    play.Ticker,
		Setup:     play.Strategy,
		Direction: play.Direction,
		Breakdown: dto.ConfidenceBreakdown{
			TickerHistory:     ticker,
			SetupHistory:      setup,
			RegimeAlignment:   regimeAlign,
			SentimentStrength: sentiment,
			PricingEdge:       pricing,
			FactorAgreement:   agreement,
		},
		Timestamp: time.Now().UTC(),
	}

	s.logger.InfoContext(ctx, "Confidence computed",
		logger.StringField("ticker", play.Ticker),
		logger.IntField("score", finalScore),
		logger.StringField("grade", result.Grade),
	)

	return result, nil
}

// GradeForScore bands a 0-100 score into a letter grade.
func GradeForScore(score int) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 65:
		return "B"
	case score >= 50:
		return "C"
	case score >= 35:
		return "D"
	default:
		return "F"
	}
}

// scoreTickerHistory rates the historical win rate for this exact ticker.
// 50 means no edge (or not enough history to trust).
func scoreTickerHistory(ticker string, closedPositions []dto.ClosedPosition) dto.FactorScore {
	var tickerTrades []dto.ClosedPosition
	for _, p := range closedPositions {
		if strings.EqualFold(p.Ticker, ticker) {
			tickerTrades = append(tickerTrades, p)
		}
	}

	if len(tickerTrades) < minTradesForHistory {
		return dto.FactorScore{
			Score:  neutralScore,
			Detail: fmt.Sprintf("Insufficient history (%d trades)", len(tickerTrades)),
		}
	}

	wins := countWins(tickerTrades)
	winRate := float64(wins) / float64(len(tickerTrades))
	return dto.FactorScore{
		Score:   utils.Clamp(winRate*100, 0, 100),
		Detail:  fmt.Sprintf("%d/%d wins (%.0f%%)", wins, len(tickerTrades), winRate*100),
		WinRate: utils.ToPointer(winRate),
	}
}

// scoreSetupHistory rates the historical win rate for the requested setup
// type, matched by substring against position notes and vehicle labels.
func scoreSetupHistory(setupType string, closedPositions []dto.ClosedPosition) dto.FactorScore {
	if setupType == "" {
		return dto.FactorScore{Score: neutralScore, Detail: "No setup type specified"}
	}

	normalized := strings.ToLower(strings.TrimSpace(setupType))
	var setupTrades []dto.ClosedPosition
	for _, p := range closedPositions {
		notes := strings.ToLower(p.Notes)
		vehicle := strings.ToLower(p.Vehicle)
		if strings.Contains(notes, normalized) || strings.Contains(vehicle, normalized) ||
			(vehicle != "" && strings.Contains(normalized, vehicle)) {
			setupTrades = append(setupTrades, p)
		}
	}

	if len(setupTrades) < minTradesForHistory {
		return dto.FactorScore{
			Score:  neutralScore,
			Detail: fmt.Sprintf("Insufficient history (%d trades)", len(setupTrades)),
		}
	}

	wins := countWins(setupTrades)
	winRate := float64(wins) / float64(len(setupTrades))
	return dto.FactorScore{
		Score:   utils.Clamp(winRate*100, 0, 100),
		Detail:  fmt.Sprintf("%d/%d wins (%.0f%%)", wins, len(setupTrades), winRate*100),
		WinRate: utils.ToPointer(winRate),
	}
}

// scoreRegimeAlignment is a fixed lookup of regime signal x play direction.
func scoreRegimeAlignment(direction string, regime *dto.RegimeSignal) dto.FactorScore {
	if regime == nil || regime.Signal == "" {
		return dto.FactorScore{Score: neutralScore, Detail: "No regime data"}
	}

	dir := strings.ToLower(direction)
	isBullish := dir == dto.DirectionBullish || dir == dto.DirectionLong || dir == "call"
	isBearish := dir == dto.DirectionBearish || dir == dto.DirectionShort || dir == "put"

	switch strings.ToUpper(regime.Signal) {
	case dto.RegimeGreen:
		if isBullish {
			return dto.FactorScore{Score: 90, Detail: "GREEN regime + bullish = strong alignment"}
		}
		if isBearish {
			return dto.FactorScore{Score: 25, Detail: "GREEN regime + bearish = counter-trend"}
		}
		return dto.FactorScore{Score: 65, Detail: "GREEN regime, neutral direction"}
	case dto.RegimeYellow:
		if isBullish {
			return dto.FactorScore{Score: 50, Detail: "YELLOW regime + bullish = caution"}
		}
		if isBearish {
			return dto.FactorScore{Score: 50, Detail: "YELLOW regime + bearish = caution"}
		}
		return dto.FactorScore{Score: 45, Detail: "YELLOW regime, uncertain"}
	default: // RED
		if isBearish {
			return dto.FactorScore{Score: 80, Detail: "RED regime + bearish = aligned"}
		}
		if isBullish {
			return dto.FactorScore{Score: 15, Detail: "RED regime + bullish = counter-trend warning"}
		}
		return dto.FactorScore{Score: 30, Detail: "RED regime, defensive posture"}
	}
}

// scoreSentimentStrength rewards strong sentiment that agrees with the play
// direction and penalizes conflicting sentiment.
func scoreSentimentStrength(play dto.Play) dto.FactorScore {
	if play.SentimentScore == nil {
		return dto.FactorScore{Score: neutralScore, Detail: "No sentiment data"}
	}

	// Sentiment arrives either as -1..1 or -100..100.
	normalized := *play.SentimentScore
	if math.Abs(normalized) > 1 {
		normalized /= 100
	}
	strength := math.Abs(normalized)

	dir := strings.ToLower(play.Direction)
	isBullish := dir == dto.DirectionBullish || dir == dto.DirectionLong
	sentimentBullish := normalized > 0

	var score float64
	if (isBullish && sentimentBullish) || (!isBullish && !sentimentBullish) {
		score = 50 + strength*50
	} else {
		score = 50 - strength*40
	}

	sign := ""
	if normalized > 0 {
		sign = "+"
	}
	return dto.FactorScore{
		Score:  utils.Clamp(math.Round(score), 0, 100),
		Detail: fmt.Sprintf("Sentiment %s%.0f%%, strength %.0f%%", sign, normalized*100, strength*100),
	}
}

// scorePricingEdge compares the entry cost against theoretical value. A
// discount is a better entry; overpaying is penalized hard.
func scorePricingEdge(play dto.Play) dto.FactorScore {
	if play.Cost == 0 || play.TheoreticalValue == 0 {
		return dto.FactorScore{Score: neutralScore, Detail: "No pricing data available"}
	}

	discount := (play.TheoreticalValue - play.Cost) / play.TheoreticalValue

	var score float64
	switch {
	case discount > 0.15:
		score = 90
	case discount > 0.05:
		score = 70
	case discount > -0.05:
		score = 50
	case discount > -0.15:
		score = 30
	default:
		score = 15
	}

	label := "Discount"
	if discount < 0 {
		label = "Premium"
	}
	return dto.FactorScore{
		Score:  score,
		Detail: fmt.Sprintf("%s: %.1f%%", label, math.Abs(discount)*100),
	}
}

// scoreFactorAgreement measures how much the other five factors agree. Low
// spread means consensus and earns a high score; conflicting signals get an
// uncertainty discount.
func scoreFactorAgreement(factors []dto.FactorScore) dto.FactorScore {
	scores := make([]float64, len(factors))
	for i, f := range factors {
		scores[i] = f.Score
	}
	stdev := utils.PopulationStdev(scores)

	label := "disagreement"
	if stdev < 10 {
		label = "strong agreement"
	} else if stdev < 20 {
		label = "moderate agreement"
	}

	return dto.FactorScore{
		Score:  utils.Clamp(math.Round(100-stdev*2.5), 0, 100),
		Detail: fmt.Sprintf("Factor spread: stdev=%.1f (%s)", stdev, label),
	}
}

func countWins(positions []dto.ClosedPosition) int {
	wins := 0
	for _, p := range positions {
		if p.PNL > 0 {
			wins++
		}
	}
	return wins
}
