package model

import "strings"

// Condition is the physical/ownership state of a game copy.
type Condition string

// Closed set of conditions.
const (
	ConditionSealed   Condition = "Sealed"
	ConditionCIB      Condition = "CIB" // complete in box
	ConditionDiscOnly Condition = "Disc Only"
	ConditionDigital  Condition = "Digital"
	ConditionOpened   Condition = "Opened" // default when nothing better is known
)

// Conditions lists every valid condition.
var Conditions = []Condition{ConditionSealed, ConditionCIB, ConditionDiscOnly, ConditionDigital, ConditionOpened}

// Valid reports whether c is one of Conditions.
func (c Condition) Valid() bool {
	for _, v := range Conditions {
		if c == v {
			return true
		}
	}
	return false
}

// ParseCondition accepts the canonical names case-insensitively plus a few aliases.
func ParseCondition(s string) (Condition, bool) {
	s = strings.TrimSpace(s)
	for _, v := range Conditions {
		if strings.EqualFold(string(v), s) {
			return v, true
		}
	}
	switch strings.ToLower(s) {
	case "complete-in-box", "complete in box", "complete":
		return ConditionCIB, true
	case "disc-only", "disc", "cart", "loose":
		return ConditionDiscOnly, true
	}
	return "", false
}
