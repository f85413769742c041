package dto

// Trade direction as recorded by Mission Control.
const (
	DirectionBullish = "bullish"
	DirectionBearish = "bearish"
	DirectionLong    = "long"
	DirectionShort   = "short"
	DirectionUnknown = "unknown"
)

// Setup classification derived from position notes.
const (
	SetupBullCallSpread = "bull_call_spread"
	SetupBearPutSpread  = "bear_put_spread"
	SetupDegen          = "degen"
	SetupUnknown        = "unknown"
)

// Exit reason classification.
const (
	ExitReasonTargetHit = "target_hit"
	ExitReasonStopLoss  = "stop_loss"
	ExitReasonUnknown   = "unknown"
)

// Market regime signal values.
const (
	RegimeGreen   = "GREEN"
	RegimeYellow  = "YELLOW"
	RegimeRed     = "RED"
	RegimeUnknown = "UNKNOWN"
)
