package dto

import (
	"encoding/json"
	"time"

	"github.com/spf13/cast"
)

// ClosedPosition is the canonical shape of a closed trade record from the
// Mission Control API. Positions are immutable once closed; this service
// only ever reads them.
type ClosedPosition struct {
	ID          int64
	Ticker      string
	Direction   string
	Vehicle     string
	EntryPrice  float64
	ExitPrice   float64
	Quantity    int
	EntryDate   *time.Time
	ExitDate    *time.Time
	PNL         float64
	Notes       string
	TargetPrice float64
	StopLoss    float64
	Expiry      string
}

// UnmarshalJSON normalizes the upstream's loose record shapes in one place.
// The API has grown several aliases over time (pnl vs realized_pnl, vehicle
// vs strategy vs setup_type, entry_date vs created_at) and numeric fields
// sometimes arrive as strings, so everything funnels through cast here
// rather than spreading fallback chains through the scoring logic.
func (p *ClosedPosition) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.ID = cast.ToInt64(raw["id"])
	p.Ticker = cast.ToString(raw["ticker"])
	p.Direction = cast.ToString(raw["direction"])
	p.Notes = cast.ToString(raw["notes"])
	p.Expiry = cast.ToString(raw["expiry"])

	p.Vehicle = firstString(raw, "vehicle", "strategy", "setup_type")

	p.EntryPrice = cast.ToFloat64(raw["entry_price"])
	p.ExitPrice = cast.ToFloat64(raw["exit_price"])
	p.Quantity = cast.ToInt(raw["quantity"])
	p.TargetPrice = cast.ToFloat64(raw["target_price"])
	p.StopLoss = cast.ToFloat64(raw["stop_loss"])

	p.PNL = cast.ToFloat64(raw["pnl"])
	if p.PNL == 0 {
		p.PNL = cast.ToFloat64(raw["realized_pnl"])
	}

	p.EntryDate = parseDate(firstString(raw, "entry_date", "created_at"))
	p.ExitDate = parseDate(cast.ToString(raw["exit_date"]))

	return nil
}

func firstString(raw map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := cast.ToString(raw[k]); s != "" {
			return s
		}
	}
	return ""
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// PositionsResponse is the GET /positions envelope; the API returns either a
// bare array or a {data: [...]} wrapper depending on the endpoint version.
type PositionsResponse struct {
	Data []ClosedPosition `json:"data"`
}

// Portfolio is the GET /portfolio payload; only starting_bankroll matters here.
type Portfolio struct {
	StartingBankroll float64
}

func (p *Portfolio) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if inner, ok := raw["data"].(map[string]interface{}); ok {
		raw = inner
	}
	p.StartingBankroll = cast.ToFloat64(raw["starting_bankroll"])
	return nil
}

// RegimeSignal is the market regime file payload.
type RegimeSignal struct {
	Signal string `json:"signal"`
	Label  string `json:"label,omitempty"`
}

// ActivityPost is the fire-and-forget activity feed payload.
type ActivityPost struct {
	AgentName string `json:"agent_name"`
	Type      string `json:"type"`
	Domain    string `json:"domain"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}
