// Package alert implements the alert evaluation pipeline: a pure threshold
// policy over a weather reading, and the evaluator that fetches the reading,
// applies the policy, and publishes a notification when it triggers.
package alert

import (
	"fmt"
	"strings"

	"stormsignal/internal/types"
)

// Policy holds the alert predicate constants: a temperature threshold in
// degrees Celsius and a set of condition names matched case-insensitively.
type Policy struct {
	TemperatureThresholdC float64
	conditions            map[string]struct{}
}

// NewPolicy creates a Policy from a threshold and condition names.
// Condition names are normalized to lowercase; empty entries are dropped.
func NewPolicy(thresholdC float64, conditions []string) Policy {
	set := make(map[string]struct{}, len(conditions))
	for _, c := range conditions {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			set[c] = struct{}{}
		}
	}
	return Policy{
		TemperatureThresholdC: thresholdC,
		conditions:            set,
	}
}

// DefaultPolicy returns the fixed policy constants: temperature above 35
// degrees Celsius, or a condition of rain or storm.
func DefaultPolicy() Policy {
	return NewPolicy(35, []string{"rain", "storm"})
}

// Decision is the outcome of applying a Policy to a WeatherReading: the
// derived boolean plus the reading that produced it. Never persisted.
type Decision struct {
	Triggered bool
	Reason    string
	Reading   types.WeatherReading
}

// Evaluate applies the predicate to a reading. It is a pure function: a given
// reading always yields the same decision.
//
// Predicate: TemperatureC > threshold OR the trimmed, lowercased Condition is
// in the condition set.
func (p Policy) Evaluate(reading types.WeatherReading) Decision {
	var reasons []string

	if reading.TemperatureC > p.TemperatureThresholdC {
		reasons = append(reasons, fmt.Sprintf("temperature %s exceeds threshold %s",
			formatTemp(reading.TemperatureC), formatTemp(p.TemperatureThresholdC)))
	}

	if _, ok := p.conditions[strings.ToLower(strings.TrimSpace(reading.Condition))]; ok {
		reasons = append(reasons, fmt.Sprintf("condition %q is an alert condition", reading.Condition))
	}

	return Decision{
		Triggered: len(reasons) > 0,
		Reason:    strings.Join(reasons, "; "),
		Reading:   reading,
	}
}
