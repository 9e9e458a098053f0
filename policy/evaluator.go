package policy

import (
	"strings"

	"go.uber.org/zap"

	"github.com/calaveras-io/s3authz/requestctx"
	"github.com/calaveras-io/s3authz/wildcards"
)

// Config carries the optional collaborators of an Evaluator.
type Config struct {
	Logger  *zap.Logger
	Metrics *Metrics
}

// Evaluator decides whether a request context is permitted by a set of
// policies. It holds no per-request state and is safe for concurrent use.
type Evaluator struct {
	log     *zap.Logger
	metrics *Metrics
}

// NewEvaluator creates an Evaluator. A nil Logger disables tracing.
func NewEvaluator(cfg Config) *Evaluator {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Evaluator{log: cfg.Logger, metrics: cfg.Metrics}
}

var defaultEvaluator = NewEvaluator(Config{})

// EvaluatePolicy evaluates a single policy with the default evaluator.
func EvaluatePolicy(rc *requestctx.RequestContext, p *Policy) Verdict {
	return defaultEvaluator.EvaluatePolicy(rc, p)
}

// EvaluateAllPolicies aggregates a list of policies with the default
// evaluator.
func EvaluateAllPolicies(rc *requestctx.RequestContext, policies []*Policy) Result {
	return defaultEvaluator.EvaluateAllPolicies(rc, policies)
}

// EvaluateAllPoliciesLegacy is the two-valued compatibility form.
func EvaluateAllPoliciesLegacy(rc *requestctx.RequestContext, policies []*Policy) Verdict {
	return defaultEvaluator.EvaluateAllPoliciesLegacy(rc, policies)
}

// statementScope is a statement's applicability to a request.
type statementScope int

const (
	stmtNotApplicable statementScope = iota
	stmtApplies
	stmtAppliesDeferred
)

func matchesResource(patterns StringOrList, requestResource string, rc *requestctx.RequestContext) bool {
	segments := strings.SplitN(requestResource, ":", 6)
	for _, pattern := range patterns {
		pattern = requestctx.SubstituteVariables(pattern, rc)
		if pattern == "*" {
			return true
		}
		if len(segments) == 6 && wildcards.MatchARN(pattern, segments[5], segments, true) {
			return true
		}
	}
	return false
}

// action matching is case-insensitive; both sides are lower-cased before
// the wildcard comparison.
func matchesAction(patterns StringOrList, action string) bool {
	if action == "" {
		return false
	}
	action = strings.ToLower(action)
	for _, pattern := range patterns {
		if wildcards.Match(strings.ToLower(pattern), action) {
			return true
		}
	}
	return false
}

func (e *Evaluator) statementApplies(rc *requestctx.RequestContext, st *Statement) statementScope {
	resource := rc.Resource()
	if len(st.Resource) > 0 && !matchesResource(st.Resource, resource, rc) {
		return stmtNotApplicable
	}
	if len(st.NotResource) > 0 && matchesResource(st.NotResource, resource, rc) {
		return stmtNotApplicable
	}

	action := rc.Action()
	if len(st.Action) > 0 && !matchesAction(st.Action, action) {
		return stmtNotApplicable
	}
	if len(st.NotAction) > 0 && matchesAction(st.NotAction, action) {
		return stmtNotApplicable
	}

	if len(st.Condition) > 0 {
		switch evalConditionBlock(st.Condition, rc) {
		case conditionFail:
			return stmtNotApplicable
		case conditionDeferred:
			return stmtAppliesDeferred
		}
	}
	return stmtApplies
}

// evaluatePolicyInternal scans the statement list in order. An applicable
// un-gated Deny stops the scan immediately; tag-gated effects are recorded
// and the scan continues so a later un-gated Deny still wins. A recorded
// tag-gated Deny is never downgraded by an Allow: the second pass must run.
func (e *Evaluator) evaluatePolicyInternal(rc *requestctx.RequestContext, p *Policy) policyOutcome {
	var allow, gatedAllow, gatedDeny bool

	for i := range p.Statement {
		st := &p.Statement[i]
		scope := e.statementApplies(rc, st)
		if scope == stmtNotApplicable {
			continue
		}

		switch st.Effect {
		case EffectDeny:
			if scope == stmtApplies {
				e.log.Debug("explicit deny", zap.String("sid", st.Sid))
				return outcomeDeny
			}
			gatedDeny = true
		case EffectAllow:
			if scope == stmtApplies {
				allow = true
			} else {
				gatedAllow = true
			}
		}
	}

	switch {
	case gatedDeny:
		return outcomeGatedDeny
	case allow:
		return outcomeAllow
	case gatedAllow:
		return outcomeGatedAllow
	}
	return outcomeNeutral
}

// EvaluatePolicy evaluates one policy's statement list against the request
// context.
func (e *Evaluator) EvaluatePolicy(rc *requestctx.RequestContext, p *Policy) Verdict {
	switch e.evaluatePolicyInternal(rc, p) {
	case outcomeDeny:
		return Deny
	case outcomeAllow:
		return Allow
	case outcomeGatedAllow, outcomeGatedDeny:
		return NeedTagConditionEval
	}
	return Neutral
}

// EvaluateAllPolicies folds the verdicts of a policy list into one
// decision. Deny overrides Allow; a tag-gated Deny forces re-evaluation
// even when another policy allows; absent any applicable statement the
// request is denied implicitly.
func (e *Evaluator) EvaluateAllPolicies(rc *requestctx.RequestContext, policies []*Policy) Result {
	var allow, gatedAllow, gatedDeny bool

	for _, p := range policies {
		switch e.evaluatePolicyInternal(rc, p) {
		case outcomeDeny:
			return e.observe(Result{Verdict: Deny})
		case outcomeAllow:
			allow = true
		case outcomeGatedAllow:
			gatedAllow = true
		case outcomeGatedDeny:
			gatedDeny = true
		}
	}

	var res Result
	switch {
	case gatedDeny:
		res = Result{Verdict: NeedTagConditionEval}
	case allow:
		res = Result{Verdict: Allow}
	case gatedAllow:
		res = Result{Verdict: NeedTagConditionEval}
	default:
		res = Result{Verdict: Deny, Implicit: true}
	}
	return e.observe(res)
}

// EvaluateAllPoliciesLegacy supports callers without a tag-evaluation
// second pass: every outcome short of an explicit Allow is a Deny.
func (e *Evaluator) EvaluateAllPoliciesLegacy(rc *requestctx.RequestContext, policies []*Policy) Verdict {
	if res := e.EvaluateAllPolicies(rc, policies); res.Verdict == Allow {
		return Allow
	}
	return Deny
}

func (e *Evaluator) observe(res Result) Result {
	if e.metrics != nil {
		e.metrics.observe(res)
	}
	e.log.Debug("authorization decision",
		zap.String("verdict", string(res.Verdict)),
		zap.Bool("implicit", res.Implicit))
	return res
}
