package policy

// Verdict is the outcome of evaluating a statement, policy or policy set.
type Verdict string

const (
	// Allow means a statement explicitly allowed the request.
	Allow Verdict = "Allow"
	// Deny means a statement explicitly denied the request, or (for
	// aggregates) no statement applied at all.
	Deny Verdict = "Deny"
	// Neutral means no statement of the policy applied.
	Neutral Verdict = "Neutral"
	// NeedTagConditionEval means an Allow or Deny is gated on object-tag
	// data not supplied in this pass; the caller must re-evaluate with
	// tag data once known.
	NeedTagConditionEval Verdict = "NeedTagConditionEval"
)

// Result is the aggregate outcome over a list of policies.
type Result struct {
	Verdict Verdict
	// Implicit is true when no policy explicitly allowed or denied the
	// request (default-deny).
	Implicit bool
}

// policyOutcome is the internal per-policy result. The aggregator needs to
// know whether a tag-gated outcome would deny or allow; the public Verdict
// folds both into NeedTagConditionEval.
type policyOutcome int

const (
	outcomeNeutral policyOutcome = iota
	outcomeAllow
	outcomeDeny
	outcomeGatedAllow
	outcomeGatedDeny
)
