// Package services holds the recurring-transaction engine and its helpers.
//
// This file maps each template frequency to the stepper that advances an
// occurrence date to the next slot.
package services

import (
	"fmt"

	"liquidity/internal/core"
)

// Stepper advances an occurrence date by one period of its frequency.
type Stepper interface {
	Next(current core.Date) core.Date
}

// DaysStepper adds a fixed number of days.
type DaysStepper struct {
	Days int
}

func (s DaysStepper) Next(current core.Date) core.Date {
	return current.AddDays(s.Days)
}

// MonthsStepper adds whole months and clamps the day to the end of the target
// month. The day of the date being advanced is the anchor, so Jan 31 steps to
// Feb 29 and then to Mar 29.
type MonthsStepper struct {
	Months int
}

func (s MonthsStepper) Next(current core.Date) core.Date {
	return current.AddMonthsClamped(s.Months)
}

var frequencySteppers = map[core.Frequency]Stepper{
	core.Weekly:    DaysStepper{Days: 7},
	core.Monthly:   MonthsStepper{Months: 1},
	core.Quarterly: MonthsStepper{Months: 3},
	core.Yearly:    MonthsStepper{Months: 12},
}

// GetStepper returns the stepper for a frequency.
func GetStepper(frequency core.Frequency) (Stepper, error) {
	s, ok := frequencySteppers[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return s, nil
}

// NextOccurrence returns the slot following current. Unknown frequencies step monthly.
func NextOccurrence(current core.Date, frequency core.Frequency) core.Date {
	s, err := GetStepper(frequency)
	if err != nil {
		s = frequencySteppers[core.Monthly]
	}
	return s.Next(current)
}
