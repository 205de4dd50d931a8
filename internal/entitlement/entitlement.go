// Package entitlement decides premium status and free-tier quota.
package entitlement

import (
	"time"

	"github.com/welth-app/welth/internal/domain/subscription"
)

// FreeEvaluationLimit is the number of evaluations a free user may run.
const FreeEvaluationLimit = 10

// Status is the entitlement summary returned to clients
type Status struct {
	IsPremium       bool   `json:"isPremium"`
	Tier            string `json:"tier"`
	EvaluationCount int    `json:"evaluationCount"`
	FreeLimit       int    `json:"freeLimit"`
	FreeRemaining   int    `json:"freeRemaining"`
}

// IsPremium reports whether sub grants premium access at now. A nil
// subscription is free.
func IsPremium(sub *subscription.Subscription, now time.Time) bool {
	if sub == nil || sub.Tier != subscription.TierPremium {
		return false
	}
	if sub.CurrentPeriodEnd == nil {
		return true
	}
	return sub.CurrentPeriodEnd.After(now)
}

// FreeRemaining returns how many free evaluations are left, never negative.
func FreeRemaining(usageCount, freeLimit int) int {
	if remaining := freeLimit - usageCount; remaining > 0 {
		return remaining
	}
	return 0
}

// Evaluate combines IsPremium and FreeRemaining into a Status.
func Evaluate(sub *subscription.Subscription, usageCount int, now time.Time) Status {
	premium := IsPremium(sub, now)
	tier := subscription.TierFree
	if premium {
		tier = subscription.TierPremium
	}
	return Status{
		IsPremium:       premium,
		Tier:            tier,
		EvaluationCount: usageCount,
		FreeLimit:       FreeEvaluationLimit,
		FreeRemaining:   FreeRemaining(usageCount, FreeEvaluationLimit),
	}
}
