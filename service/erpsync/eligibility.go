package erpsync

import (
	"strings"

	"plmsync.GO/service/rules"
)

// SkipReason explains why an item never reaches the ERP.
type SkipReason string

const (
	Eligible      SkipReason = ""
	SkipLifecycle SkipReason = "lifecycle"
	SkipTransfer  SkipReason = "transfer"
)

// Eligibility holds the lifecycle allow-list and the affirmative transfer literal.
type Eligibility struct {
	allowed     map[string]struct{}
	affirmative string
}

// NewEligibility reads the allow-list and transfer literal from rules.
func NewEligibility(r rules.Resolver) Eligibility {
	e := Eligibility{
		allowed:     make(map[string]struct{}),
		affirmative: strings.TrimSpace(r.Resolve(rules.KeyTransferFilter, rules.DefaultTransferFilter)),
	}
	for _, phase := range rules.SplitList(r.Resolve(rules.KeyAllowedLifecycles, rules.DefaultAllowedLifecycles)) {
		e.allowed[phase] = struct{}{}
	}
	return e
}

// Check tests the lifecycle phase first, then the transfer flag.
func (e Eligibility) Check(lifecyclePhase, transferFlag string) SkipReason {
	if _, ok := e.allowed[strings.TrimSpace(lifecyclePhase)]; !ok {
		return SkipLifecycle
	}
	if strings.TrimSpace(transferFlag) != e.affirmative {
		return SkipTransfer
	}
	return Eligible
}
