package domain

// RateDecision is the uniform admission-control result produced by the rate
// gate. ResetInMs counts down to the end of whichever applies: the current
// window or an active lockout.
type RateDecision struct {
	Allowed   bool  `json:"allowed"`
	Remaining int   `json:"remaining"`
	ResetInMs int64 `json:"reset_in_ms"`
}
