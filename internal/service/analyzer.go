package service

import (
	"math"
	"regexp"
	"strings"

	"backtest-engine/internal/dto"
	"backtest-engine/pkg/utils"
)

// Setup classification works off free-text conventions in position notes
// (e.g. "Bear put 74/72.5 Feb20"). Patterns are tried in order, first match
// wins; keeping them as data lets the grammar be tested on its own.
var setupPatterns = []struct {
	Substr string
	Setup  string
}{
	{"bull call", dto.SetupBullCallSpread},
	{"bear put", dto.SetupBearPutSpread},
	{"degen", dto.SetupDegen},
}

var (
	regimePattern      = regexp.MustCompile(`(?i)(RED|YELLOW|GREEN)\s*regime`)
	dealerClosePattern = regexp.MustCompile(`Dealer auto-close: (\S+)`)
)

// ClassifySetup maps position notes to a setup type, falling back to the
// vehicle label when the notes carry no recognized convention.
func ClassifySetup(notes, vehicle string) string {
	notesLower := strings.ToLower(notes)
	for _, p := range setupPatterns {
		if strings.Contains(notesLower, p.Substr) {
			return p.Setup
		}
	}
	if vehicle != "" {
		return vehicle
	}
	return dto.SetupUnknown
}

// ParseRegime extracts the market regime recorded in the notes at entry
// time, e.g. "RED regime defensive". Empty when nothing was recorded.
func ParseRegime(notes string) string {
	m := regimePattern.FindStringSubmatch(notes)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// AnalyzeTrade normalizes one closed position into a structured trade
// outcome. Pure function: missing fields fall back to defaults, it never
// fails.
func AnalyzeTrade(position dto.ClosedPosition) dto.AnalyzedTrade {
	entry := position.EntryPrice
	exit := position.ExitPrice
	qty := position.Quantity
	if qty < 1 {
		qty = 1
	}

	// P&L: prefer the API value, otherwise derive from prices. The API
	// figure is total $ P&L and already includes the contract multiplier.
	realizedPNL := position.PNL
	if realizedPNL == 0 && entry > 0 && exit > 0 {
		realizedPNL = (exit - entry) * float64(qty) * 100
	}

	// Cost basis for options spreads: entry premium * quantity * 100.
	costBasis := entry * float64(qty) * 100

	var returnPct float64
	if costBasis > 0 {
		returnPct = realizedPNL / costBasis * 100
	}

	var holdDays *int
	if position.EntryDate != nil && position.ExitDate != nil {
		days := int(math.Round(position.ExitDate.Sub(*position.EntryDate).Hours() / 24))
		if days < 1 {
			days = 1
		}
		holdDays = &days
	}

	direction := position.Direction
	if direction == "" {
		direction = dto.DirectionUnknown
	}
	vehicle := position.Vehicle
	if vehicle == "" {
		vehicle = "spread"
	}

	isWin := realizedPNL > 0
	hitTarget := position.TargetPrice > 0 && exit >= position.TargetPrice
	hitStop := position.StopLoss > 0 && exit <= position.StopLoss

	exitReason := dto.ExitReasonUnknown
	if m := dealerClosePattern.FindStringSubmatch(position.Notes); m != nil {
		exitReason = m[1]
	} else if hitTarget {
		exitReason = dto.ExitReasonTargetHit
	} else if hitStop {
		exitReason = dto.ExitReasonStopLoss
	}

	return dto.AnalyzedTrade{
		ID:            position.ID,
		Ticker:        position.Ticker,
		Strategy:      ClassifySetup(position.Notes, position.Vehicle),
		Direction:     direction,
		Vehicle:       vehicle,
		RegimeAtEntry: ParseRegime(position.Notes),
		EntryPrice:    entry,
		ExitPrice:     exit,
		Quantity:      qty,
		CostBasis:     utils.Round2(costBasis),
		RealizedPNL:   utils.Round2(realizedPNL),
		ReturnPct:     utils.Round2(returnPct),
		HoldDays:      holdDays,
		IsWin:         isWin,
		HitTarget:     hitTarget,
		HitStop:       hitStop,
		ExitReason:    exitReason,
		EntryDate:     position.EntryDate,
		ExitDate:      position.ExitDate,
		Expiry:        position.Expiry,
		Notes:         position.Notes,
	}
}
