package models

import (
	"strconv"
	"strings"
)

type OrderType string

const (
	OrderTypeDineIn   OrderType = "DINE_IN"
	OrderTypeWalkIn   OrderType = "WALK_IN"
	OrderTypeDelivery OrderType = "DELIVERY"
)

const WalkIn = "walk-in"

// DefaultDeliveryChannels are the delivery partners accepted when none are configured.
var DefaultDeliveryChannels = []string{"grubhub", "ubereats", "doordash", "postmates"}

// TableNumber parses "table N" and returns N.
func TableNumber(identifier string) (int, bool) {
	fields := strings.Fields(strings.ToLower(identifier))
	if len(fields) != 2 || fields[0] != "table" {
		return 0, false
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func OrderTypeFor(identifier string) OrderType {
	normalized := strings.ToLower(strings.TrimSpace(identifier))
	if _, ok := TableNumber(normalized); ok {
		return OrderTypeDineIn
	}
	if normalized == WalkIn {
		return OrderTypeWalkIn
	}
	return OrderTypeDelivery
}

// IsValidTableIdentifier accepts "table N" with 1 <= N <= maxTable, "walk-in",
// or one of the delivery channels. Matching ignores case and surrounding space.
func IsValidTableIdentifier(identifier string, maxTable int, channels []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(identifier))
	if normalized == "" {
		return false
	}
	if n, ok := TableNumber(normalized); ok {
		return n >= 1 && n <= maxTable
	}
	if normalized == WalkIn {
		return true
	}
	for _, channel := range channels {
		if normalized == strings.ToLower(channel) {
			return true
		}
	}
	return false
}
