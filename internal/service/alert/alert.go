package alert

import "binwatch/internal/model"

// Severity ranks how urgently a bin needs attention.
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityNotice   Severity = "notice"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

const (
	messageOverflow = "🚨 Garbage bin is OVERFLOWING!Please collect the Garbage"
	messageFull     = "⚠️ Garbage bin is FULL!Ready to be collected"
	messageHalf     = "🟡 Garbage bin is HALF filled"
	messageEmpty    = "✅ Garbage bin is EMPTY"
)

// Alert is the human-readable outcome for a label.
type Alert struct {
	Label    model.Label `json:"label"`
	Message  string      `json:"message"`
	Severity Severity    `json:"severity"`
}

// Message returns the alert text for a label. Unknown labels get the empty-bin message.
func Message(label model.Label) string {
	switch label {
	case model.LabelOverflow:
		return messageOverflow
	case model.LabelFull:
		return messageFull
	case model.LabelHalf:
		return messageHalf
	default:
		return messageEmpty
	}
}

// SeverityOf returns the severity for a label. Unknown labels are SeverityOK.
func SeverityOf(label model.Label) Severity {
	switch label {
	case model.LabelOverflow:
		return SeverityCritical
	case model.LabelFull:
		return SeverityWarning
	case model.LabelHalf:
		return SeverityNotice
	default:
		return SeverityOK
	}
}

// For builds the full alert for a label.
func For(label model.Label) Alert {
	return Alert{
		Label:    label,
		Message:  Message(label),
		Severity: SeverityOf(label),
	}
}

// Actionable reports whether the bin should be collected.
func (a Alert) Actionable() bool {
	return a.Severity == SeverityWarning || a.Severity == SeverityCritical
}
