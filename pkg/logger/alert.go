package logger

import (
	"fmt"
	"sort"
	"strings"

	"zahaam/pkg/common"

	"go.uber.org/zap/zapcore"
)

// AlertSender delivers a formatted alert message, e.g. to a Telegram chat.
type AlertSender interface {
	SendAlert(message string) error
}

// AlertCore is a zapcore.Core that forwards entries flagged with the alert
// field to an AlertSender. It writes nothing itself and is meant to be teed
// next to the regular core.
type AlertCore struct {
	sender   AlertSender
	minLevel zapcore.Level
	fields   []zapcore.Field
}

func NewAlertCore(sender AlertSender, minLevel zapcore.Level) *AlertCore {
	return &AlertCore{sender: sender, minLevel: minLevel}
}

func (a *AlertCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= a.minLevel
}

func (a *AlertCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(a.fields)+len(fields))
	merged = append(merged, a.fields...)
	merged = append(merged, fields...)
	return &AlertCore{sender: a.sender, minLevel: a.minLevel, fields: merged}
}

func (a *AlertCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, a)
	}
	return checkedEntry
}

func (a *AlertCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := append(append([]zapcore.Field{}, a.fields...), fields...)
	if !hasAlertFlag(all) {
		return nil
	}
	message := FormatAlert(entry, all)
	go func() {
		_ = a.sender.SendAlert(message)
	}()
	return nil
}

func (a *AlertCore) Sync() error {
	return nil
}

func hasAlertFlag(fields []zapcore.Field) bool {
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT && f.Type == zapcore.BoolType && f.Integer == 1 {
			return true
		}
	}
	return false
}

// FormatAlert renders an entry and its fields as a plain-text alert.
func FormatAlert(entry zapcore.Entry, fields []zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT {
			continue
		}
		f.AddTo(enc)
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s alert\n\n%s\n\n", entry.Level.CapitalString(), entry.Message)
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %v\n", k, enc.Fields[k])
	}
	fmt.Fprintf(&b, "\n%s", entry.Time.Format("2006-01-02 15:04:05"))
	return b.String()
}
