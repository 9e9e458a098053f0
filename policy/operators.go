package policy

import (
	"strconv"
	"strings"
	"time"

	"github.com/calaveras-io/s3authz/internal/ipaddr"
	"github.com/calaveras-io/s3authz/wildcards"
)

// operator is the closed set of condition operator kinds. Tokens outside
// the set decode to opUnsupported and fail their condition block.
type operator int

const (
	opUnsupported operator = iota
	opStringEquals
	opStringNotEquals
	opStringEqualsIgnoreCase
	opStringNotEqualsIgnoreCase
	opStringLike
	opStringNotLike
	opNumericEquals
	opNumericNotEquals
	opNumericLessThan
	opNumericLessThanEquals
	opNumericGreaterThan
	opNumericGreaterThanEquals
	opDateEquals
	opDateNotEquals
	opDateLessThan
	opDateLessThanEquals
	opDateGreaterThan
	opDateGreaterThanEquals
	opBool
	opBinaryEquals
	opBinaryNotEquals
	opIPAddress
	opNotIPAddress
	opArnEquals
	opArnNotEquals
	opArnLike
	opArnNotLike
	opNull
)

// setQualifier is the optional multi-value prefix of an operator token.
type setQualifier int

const (
	qualNone setQualifier = iota
	qualForAnyValue
	qualForAllValues
)

var operatorNames = map[string]operator{
	"StringEquals":                opStringEquals,
	"StringNotEquals":             opStringNotEquals,
	"StringEqualsIgnoreCase":      opStringEqualsIgnoreCase,
	"StringNotEqualsIgnoreCase":   opStringNotEqualsIgnoreCase,
	"StringLike":                  opStringLike,
	"StringNotLike":               opStringNotLike,
	"NumericEquals":               opNumericEquals,
	"NumericNotEquals":            opNumericNotEquals,
	"NumericLessThan":             opNumericLessThan,
	"NumericLessThanEquals":       opNumericLessThanEquals,
	"NumericGreaterThan":          opNumericGreaterThan,
	"NumericGreaterThanEquals":    opNumericGreaterThanEquals,
	"DateEquals":                  opDateEquals,
	"DateNotEquals":               opDateNotEquals,
	"DateLessThan":                opDateLessThan,
	"DateLessThanEquals":          opDateLessThanEquals,
	"DateGreaterThan":             opDateGreaterThan,
	"DateGreaterThanEquals":       opDateGreaterThanEquals,
	"Bool":                        opBool,
	"BinaryEquals":                opBinaryEquals,
	"BinaryNotEquals":             opBinaryNotEquals,
	"IpAddress":                   opIPAddress,
	"NotIpAddress":                opNotIPAddress,
	"ArnEquals":                   opArnEquals,
	"ArnNotEquals":                opArnNotEquals,
	"ArnLike":                     opArnLike,
	"ArnNotLike":                  opArnNotLike,
	"Null":                        opNull,
}

// parseOperatorToken decomposes an operator token into its optional
// multi-value prefix, bare operator and optional IfExists suffix, e.g.
// "ForAnyValue:StringLikeIfExists".
func parseOperatorToken(token string) (operator, setQualifier, bool) {
	qual := qualNone
	switch {
	case strings.HasPrefix(token, "ForAnyValue:"):
		qual = qualForAnyValue
		token = strings.TrimPrefix(token, "ForAnyValue:")
	case strings.HasPrefix(token, "ForAllValues:"):
		qual = qualForAllValues
		token = strings.TrimPrefix(token, "ForAllValues:")
	}

	ifExists := false
	if strings.HasSuffix(token, "IfExists") && token != "IfExists" {
		ifExists = true
		token = strings.TrimSuffix(token, "IfExists")
	}

	op, ok := operatorNames[token]
	if !ok {
		return opUnsupported, qual, ifExists
	}
	return op, qual, ifExists
}

// isNegation reports whether the operator is satisfied when the resolved
// key is absent, like an explicit IfExists suffix.
func (op operator) isNegation() bool {
	switch op {
	case opStringNotEquals, opStringNotEqualsIgnoreCase, opStringNotLike,
		opNumericNotEquals, opDateNotEquals, opBinaryNotEquals,
		opNotIPAddress, opArnNotEquals, opArnNotLike:
		return true
	}
	return false
}

// matchFn reports whether a single resolved value satisfies a single
// policy value.
type matchFn func(resolved, value string) bool

func matchesAnyValue(resolved string, values []string, fn matchFn) bool {
	for _, v := range values {
		if fn(resolved, v) {
			return true
		}
	}
	return false
}

// match applies the set-qualifier semantics: ForAnyValue requires one
// resolved value to satisfy some policy value, ForAllValues requires every
// resolved value to. Without a qualifier a list-valued key never matches
// (fail closed).
func match(resolved, values []string, qual setQualifier, fn matchFn) bool {
	switch qual {
	case qualForAnyValue:
		for _, r := range resolved {
			if matchesAnyValue(r, values, fn) {
				return true
			}
		}
		return false
	case qualForAllValues:
		for _, r := range resolved {
			if !matchesAnyValue(r, values, fn) {
				return false
			}
		}
		return true
	default:
		if len(resolved) != 1 {
			return false
		}
		return matchesAnyValue(resolved[0], values, fn)
	}
}

func stringEqual(resolved, value string) bool {
	return wildcards.Unescape(value) == resolved
}

func stringEqualFold(resolved, value string) bool {
	return strings.EqualFold(wildcards.Unescape(value), resolved)
}

func stringLike(resolved, value string) bool {
	return wildcards.Match(value, resolved)
}

func numericMatch(want func(cmp int) bool) matchFn {
	return func(resolved, value string) bool {
		a, errA := strconv.ParseInt(resolved, 10, 64)
		b, errB := strconv.ParseInt(value, 10, 64)
		if errA != nil || errB != nil {
			return false
		}
		switch {
		case a < b:
			return want(-1)
		case a > b:
			return want(1)
		default:
			return want(0)
		}
	}
}

// dateEpochMillis converts a date condition operand to epoch milliseconds.
// Values containing ':' are parsed as RFC3339 timestamps; anything else is
// passed through as an already-epoch number.
func dateEpochMillis(s string) (int64, bool) {
	if strings.Contains(s, ":") {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return 0, false
		}
		return t.UnixMilli(), true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func dateMatch(want func(cmp int) bool) matchFn {
	return func(resolved, value string) bool {
		a, okA := dateEpochMillis(resolved)
		b, okB := dateEpochMillis(value)
		if !okA || !okB {
			return false
		}
		switch {
		case a < b:
			return want(-1)
		case a > b:
			return want(1)
		default:
			return want(0)
		}
	}
}

func ipMatch(resolved, value string) bool {
	return ipaddr.MatchCIDR(value, ipaddr.Parse(resolved))
}

func arnLike(resolved, value string) bool {
	segments := strings.SplitN(resolved, ":", 6)
	if len(segments) != 6 {
		return false
	}
	return wildcards.MatchARN(value, segments[5], segments, false)
}

var (
	cmpEqual        = func(cmp int) bool { return cmp == 0 }
	cmpLess         = func(cmp int) bool { return cmp < 0 }
	cmpLessEqual    = func(cmp int) bool { return cmp <= 0 }
	cmpGreater      = func(cmp int) bool { return cmp > 0 }
	cmpGreaterEqual = func(cmp int) bool { return cmp >= 0 }
)

// evalOperator applies one operator to the resolved key values and the
// policy-supplied value list. present is only consulted by Null; every
// other operator is handed a present key by the condition evaluator.
func evalOperator(op operator, qual setQualifier, resolved []string, present bool, values []string) bool {
	switch op {
	case opStringEquals:
		return match(resolved, values, qual, stringEqual)
	case opStringNotEquals:
		return !match(resolved, values, qual, stringEqual)
	case opStringEqualsIgnoreCase:
		return match(resolved, values, qual, stringEqualFold)
	case opStringNotEqualsIgnoreCase:
		return !match(resolved, values, qual, stringEqualFold)
	case opStringLike:
		return match(resolved, values, qual, stringLike)
	case opStringNotLike:
		return !match(resolved, values, qual, stringLike)
	case opNumericEquals:
		return match(resolved, values, qual, numericMatch(cmpEqual))
	case opNumericNotEquals:
		return !match(resolved, values, qual, numericMatch(cmpEqual))
	case opNumericLessThan:
		return match(resolved, values, qual, numericMatch(cmpLess))
	case opNumericLessThanEquals:
		return match(resolved, values, qual, numericMatch(cmpLessEqual))
	case opNumericGreaterThan:
		return match(resolved, values, qual, numericMatch(cmpGreater))
	case opNumericGreaterThanEquals:
		return match(resolved, values, qual, numericMatch(cmpGreaterEqual))
	case opDateEquals:
		return match(resolved, values, qual, dateMatch(cmpEqual))
	case opDateNotEquals:
		return !match(resolved, values, qual, dateMatch(cmpEqual))
	case opDateLessThan:
		return match(resolved, values, qual, dateMatch(cmpLess))
	case opDateLessThanEquals:
		return match(resolved, values, qual, dateMatch(cmpLessEqual))
	case opDateGreaterThan:
		return match(resolved, values, qual, dateMatch(cmpGreater))
	case opDateGreaterThanEquals:
		return match(resolved, values, qual, dateMatch(cmpGreaterEqual))
	case opBool:
		// AWS semantics: a literal string compare, not a boolean type
		return match(resolved, values, qual, stringEqual)
	case opBinaryEquals:
		// policy values are base64; the key carries the same encoding
		return match(resolved, values, qual, stringEqual)
	case opBinaryNotEquals:
		return !match(resolved, values, qual, stringEqual)
	case opIPAddress:
		return match(resolved, values, qual, ipMatch)
	case opNotIPAddress:
		// an invalid address never matches, not even the negation
		if len(resolved) != 1 || ipaddr.Parse(resolved[0]) == nil {
			return false
		}
		return !match(resolved, values, qual, ipMatch)
	case opArnEquals:
		return match(resolved, values, qual, stringEqual)
	case opArnNotEquals:
		return !match(resolved, values, qual, stringEqual)
	case opArnLike:
		return match(resolved, values, qual, arnLike)
	case opArnNotLike:
		return !match(resolved, values, qual, arnLike)
	case opNull:
		return evalNull(present, values)
	}
	return false
}

// evalNull: a "true" value asserts the key is absent, a "false" value
// asserts it is present; any value in the list may satisfy.
func evalNull(present bool, values []string) bool {
	for _, v := range values {
		if (v == "true" && !present) || (v == "false" && present) {
			return true
		}
	}
	return false
}
