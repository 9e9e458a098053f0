package policy

import (
	"fmt"

	"github.com/calaveras-io/s3authz/requestctx"
)

// PrincipalParams bundles the inputs of a trust-policy evaluation.
type PrincipalParams struct {
	Context         *requestctx.RequestContext
	TrustedPolicy   *Policy
	TargetAccountID string
}

// PrincipalResult is the outcome of a trust-policy evaluation. CheckAction
// tells the caller it must separately re-check action/resource access
// (cross-account requests).
type PrincipalResult struct {
	Effect      Verdict
	CheckAction bool
}

// principalValidSet is the set of identity strings considered "self" for a
// requester/target-account pair. Built once per evaluation, never mutated.
type principalValidSet struct {
	aws       []string
	service   string
	federated []string
}

func accountRootArn(accountID string) string {
	return fmt.Sprintf("arn:aws:iam::%s:root", accountID)
}

func buildValidSet(info requestctx.RequesterInfo, targetAccountID string) (principalValidSet, bool) {
	rootArn := accountRootArn(info.AccountID)

	if info.AccountID != targetAccountID {
		// cross-account: the trust policy may admit the account, its
		// root or the exact requester; action access is re-checked by
		// the caller against the target account's own policies
		return principalValidSet{aws: []string{info.AccountID, rootArn, info.Arn}}, true
	}

	switch info.PrincipalType {
	case "Federated":
		return principalValidSet{federated: []string{info.Arn}}, false
	case "Service":
		return principalValidSet{service: info.Arn}, false
	}

	// User / AssumedRole
	set := []string{info.AccountID, rootArn, info.Arn}
	if info.ParentArn != "" && info.ParentArn != info.Arn {
		set = append(set, info.ParentArn)
	}
	return principalValidSet{aws: set}, false
}

func principalMatches(p *Principal, set principalValidSet) bool {
	for _, entry := range p.AWS {
		if entry == "*" {
			return true
		}
		for _, valid := range set.aws {
			if entry == valid {
				return true
			}
		}
	}
	for _, entry := range p.Federated {
		if entry == "*" {
			return true
		}
		for _, valid := range set.federated {
			if entry == valid {
				return true
			}
		}
	}
	for _, entry := range p.Service {
		if entry == "*" || (set.service != "" && entry == set.service) {
			return true
		}
	}
	return false
}

// principalStatementVerdict evaluates one trust-policy statement against
// the valid set. Action/Resource fields are not consulted here.
func principalStatementVerdict(st *Statement, set principalValidSet, rc *requestctx.RequestContext) Verdict {
	switch {
	case st.NotPrincipal != nil:
		// NotPrincipal "*" can never select anyone
		if st.NotPrincipal.Wildcard || principalMatches(st.NotPrincipal, set) {
			return Neutral
		}
	case st.Principal != nil:
		if !st.Principal.Wildcard && !principalMatches(st.Principal, set) {
			return Neutral
		}
	default:
		return Neutral
	}

	if len(st.Condition) > 0 && evalConditionBlock(st.Condition, rc) != conditionPass {
		return Neutral
	}
	return Verdict(st.Effect)
}

// EvaluatePrincipal evaluates the Principal/NotPrincipal statements of a
// trust policy against the requester identity and the target account.
// Any applicable Deny wins; absent any applicable Allow the default is
// Deny.
func (e *Evaluator) EvaluatePrincipal(p PrincipalParams) PrincipalResult {
	info := p.Context.RequesterInfo()
	validSet, checkAction := buildValidSet(info, p.TargetAccountID)

	allowed := false
	if p.TrustedPolicy != nil {
		for i := range p.TrustedPolicy.Statement {
			st := &p.TrustedPolicy.Statement[i]
			switch principalStatementVerdict(st, validSet, p.Context) {
			case Deny:
				return PrincipalResult{Effect: Deny, CheckAction: checkAction}
			case Allow:
				allowed = true
			}
		}
	}

	if allowed {
		return PrincipalResult{Effect: Allow, CheckAction: checkAction}
	}
	return PrincipalResult{Effect: Deny, CheckAction: checkAction}
}

// EvaluatePrincipal evaluates a trust policy with the default evaluator.
func EvaluatePrincipal(p PrincipalParams) PrincipalResult {
	return defaultEvaluator.EvaluatePrincipal(p)
}
