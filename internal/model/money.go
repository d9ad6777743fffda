package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a non-negative currency amount in cents.
type Money int64

// ParseMoney parses "12", "12.3", "12.34" or "$12.34". Negative values are rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return 0, nil
	}
	if strings.HasPrefix(s, "-") {
		return 0, errors.New("amount must not be negative")
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if !digits(whole) {
		return 0, fmt.Errorf("bad amount %q", s)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w > (math.MaxInt64-99)/100 {
		return 0, fmt.Errorf("bad amount %q", s)
	}
	var c int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 || !digits(frac) {
			return 0, fmt.Errorf("bad amount %q", s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		c, _ = strconv.ParseInt(frac, 10, 64)
	}
	return Money(w*100 + c), nil
}

// digits reports whether s is non-empty and made of ASCII digits only.
func digits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String formats the amount as "12.34".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign, v = "-", -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
