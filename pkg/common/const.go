package common

// Cache keys shared between the backtest engine and the confidence scorer.
const (
	KEY_CLOSED_POSITIONS = "mission_control:positions:closed"
	KEY_PORTFOLIO        = "mission_control:portfolio"
	KEY_REGIME_SIGNAL    = "regime:current_signal"
)

// Activity feed classification for everything this agent publishes.
const (
	ACTIVITY_TYPE_ANALYSIS = "analysis"
	ACTIVITY_TYPE_ALERT    = "alert"
	ACTIVITY_DOMAIN        = "trading"
)

const (
	KEY_LOG_HOOK_SEND_ALERT = "send_alert"
)
