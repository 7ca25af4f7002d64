package regime

import "github.com/wonny/inout/backend/internal/contracts"

// Transition describes what a single Step did
type Transition struct {
	Breached   bool // step 1 fired: forced OUT, out day stamped
	Expired    bool // step 2 fired: cooldown elapsed, back IN
	SameDayRun bool // both fired on one day (only reachable with wait 0)
}

// Step applies one daily evaluation to s and returns the next state.
// Order is fixed:
//  1. any breach → OUT, OutDay = DayCounter
//  2. DayCounter >= OutDay + wait → IN (evaluated regardless of step 1)
//  3. DayCounter++
//
// WaitDays is recorded as the cooldown used for this day's step 2.
func Step(s contracts.State, breaches, wait int) (contracts.State, Transition) {
	next := s
	var tr Transition

	if breaches > 0 {
		next.Regime = contracts.RegimeOut
		next.OutDay = next.DayCounter
		tr.Breached = true
	}

	if next.DayCounter >= next.OutDay+wait {
		if next.Regime != contracts.RegimeIn {
			tr.Expired = true
		}
		next.Regime = contracts.RegimeIn
	}
	tr.SameDayRun = tr.Breached && next.Regime == contracts.RegimeIn

	next.WaitDays = wait
	next.DayCounter++
	return next, tr
}
