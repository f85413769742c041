package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"backtest-engine/pkg/common"

	"go.uber.org/zap/zapcore"
)

// AlertCore mirrors entries at or above minLevel to the Mission Control
// activity feed when the log call opts in via common.KEY_LOG_HOOK_SEND_ALERT.
// Posting is best-effort and async so logging never blocks on the network.
type AlertCore struct {
	core        zapcore.Core
	minLevel    zapcore.Level
	activityURL string
	agentName   string
}

func NewAlertCore(core zapcore.Core, minLevel zapcore.Level, activityURL, agentName string) *AlertCore {
	return &AlertCore{
		core:        core,
		minLevel:    minLevel,
		activityURL: activityURL,
		agentName:   agentName,
	}
}

func (a *AlertCore) Enabled(lvl zapcore.Level) bool {
	return a.core.Enabled(lvl)
}

func (a *AlertCore) With(fields []zapcore.Field) zapcore.Core {
	return &AlertCore{
		core:        a.core.With(fields),
		minLevel:    a.minLevel,
		activityURL: a.activityURL,
		agentName:   a.agentName,
	}
}

func (a *AlertCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(entry.Level) {
		return a.core.Check(entry, checkedEntry).AddCore(entry, a)
	}
	return checkedEntry
}

func (a *AlertCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	shouldSend := false
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT && f.Type == zapcore.BoolType && f.Integer == 1 {
			shouldSend = true
			break
		}
	}
	if entry.Level >= a.minLevel && shouldSend {
		go a.postActivity(entry, fields)
	}
	return a.core.Write(entry, fields)
}

func (a *AlertCore) Sync() error {
	return a.core.Sync()
}

func (a *AlertCore) postActivity(entry zapcore.Entry, fields []zapcore.Field) {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}

	body := entry.Message
	for k, v := range enc.Fields {
		if k == common.KEY_LOG_HOOK_SEND_ALERT {
			continue
		}
		body += fmt.Sprintf("\n- %s: %v", k, v)
	}

	payload := map[string]interface{}{
		"agent_name": a.agentName,
		"type":       common.ACTIVITY_TYPE_ALERT,
		"domain":     common.ACTIVITY_DOMAIN,
		"title":      fmt.Sprintf("%s: %s", entry.Level.CapitalString(), entry.Message),
		"body":       body,
	}

	jsonBody, _ := json.Marshal(payload)
	http.Post(a.activityURL, "application/json", bytes.NewBuffer(jsonBody))
}
