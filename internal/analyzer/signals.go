package analyzer

import (
	"fmt"
	"net/http"

	"github.com/trusted-tools/ghostjobs/internal/model"
)

// Reveal delays in milliseconds, consumed by clients to stagger the checklist.
const (
	StaleDelay      = 1000
	WeakDelay       = 2200
	InactivityDelay = 3400
)

const noDateInfo = "No date detected"

// BuildSignals derives the three checklist signals.
//
// weak has no detector and is always false.
func BuildSignals(freshness Freshness, daysOld *int, statusCode int) model.Signals {
	info := noDateInfo
	if daysOld != nil {
		info = fmt.Sprintf("%d days old", *daysOld)
	}

	return model.Signals{
		Stale: model.Signal{
			Result: freshness == FreshnessStale,
			Delay:  StaleDelay,
			Info:   info,
		},
		Weak: model.Signal{
			Result: false,
			Delay:  WeakDelay,
		},
		Inactivity: model.Signal{
			Result: statusCode != http.StatusOK,
			Delay:  InactivityDelay,
		},
	}
}
