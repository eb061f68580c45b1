package service

import "time"

// backoffDelay — пауза после failure-го неудачного дайла (1-based):
// base * 2^(failure-1), с потолком cap. failure=1 -> base.
func backoffDelay(base, cap time.Duration, failure int) time.Duration {
	if failure < 1 {
		failure = 1
	}
	d := base
	for i := 1; i < failure; i++ {
		d *= 2
		if cap > 0 && d >= cap {
			return cap
		}
	}
	if cap > 0 && d > cap {
		return cap
	}
	return d
}
