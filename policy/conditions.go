package policy

import (
	"github.com/calaveras-io/s3authz/requestctx"
)

// conditionOutcome is the result of evaluating a statement's condition
// block.
type conditionOutcome int

const (
	conditionFail conditionOutcome = iota
	conditionPass
	conditionDeferred
)

// evalConditionBlock evaluates every operator/key pair of a condition
// block. Any failing comparison fails the whole block. A key that touches
// tag-gated data while NeedTagEval is false defers the block instead of
// comparing against an always-absent value; the remaining keys are still
// evaluated so a definite failure wins over deferral.
func evalConditionBlock(block ConditionBlock, rc *requestctx.RequestContext) conditionOutcome {
	deferred := false

	for token, keys := range block {
		op, qual, ifExists := parseOperatorToken(token)
		if op == opUnsupported {
			return conditionFail
		}

		for key, rawValues := range keys {
			values := make([]string, len(rawValues))
			for i, v := range rawValues {
				values[i] = requestctx.SubstituteVariables(v, rc)
			}

			if isTagConditionKey(key) && !rc.NeedTagEval() {
				deferred = true
				continue
			}

			resolved, values, found := resolveConditionKey(key, values, rc)
			if !found {
				if ifExists || op.isNegation() {
					continue
				}
				if op != opNull {
					return conditionFail
				}
			}

			if !evalOperator(op, qual, resolved, found, values) {
				return conditionFail
			}
		}
	}

	if deferred {
		return conditionDeferred
	}
	return conditionPass
}
