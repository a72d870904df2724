package domain

import "strings"

// Urgency is the ordinal replenishment urgency tier.
// EMERGENCY > CRITICAL > HIGH > MEDIUM > LOW.
type Urgency string

const (
	UrgencyEmergency Urgency = "EMERGENCY"
	UrgencyCritical  Urgency = "CRITICAL"
	UrgencyHigh      Urgency = "HIGH"
	UrgencyMedium    Urgency = "MEDIUM"
	UrgencyLow       Urgency = "LOW"
)

var urgencyRanks = map[Urgency]int{
	UrgencyEmergency: 4,
	UrgencyCritical:  3,
	UrgencyHigh:      2,
	UrgencyMedium:    1,
	UrgencyLow:       0,
}

// Rank returns the ordinal rank of the urgency, higher = more urgent.
// Unknown values rank as LOW.
func (u Urgency) Rank() int {
	return urgencyRanks[u]
}

// AboveLow reports whether the urgency warrants an alert.
func (u Urgency) AboveLow() bool {
	return u.Rank() > urgencyRanks[UrgencyLow]
}

// ParseUrgency returns the urgency for a given label (case-insensitive).
func ParseUrgency(label string) (Urgency, bool) {
	u := Urgency(strings.ToUpper(strings.TrimSpace(label)))
	_, ok := urgencyRanks[u]
	return u, ok
}

// Severity is the alert severity derived from urgency.
type Severity string

const (
	SeverityEmergency Severity = "EMERGENCY"
	SeverityCritical  Severity = "CRITICAL"
	SeverityWarning   Severity = "WARNING"
)

// AlertType classifies what an alert is about.
type AlertType string

const (
	AlertStockoutImminent AlertType = "STOCKOUT_IMMINENT"
	AlertLowStock         AlertType = "LOW_STOCK"
)

// Action is the recommended operator response attached to an alert.
type Action string

const (
	ActionOrderNow      Action = "ORDER_NOW"
	ActionOrderToday    Action = "ORDER_TODAY"
	ActionOrderThisWeek Action = "ORDER_THIS_WEEK"
	ActionMonitor       Action = "MONITOR"
)
