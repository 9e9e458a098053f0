// Package wildcards converts AWS-style wildcard strings into anchored
// regular expressions and compares ARNs segment by segment.
package wildcards

import (
	"regexp"
	"strings"
)

// Literal escape sequences. A policy string may contain ${*}, ${?} or ${$}
// to match the characters '*', '?' and '$' themselves instead of triggering
// wildcard semantics. They are handled before the generic substitutions so
// an escaped wildcard always wins.
const (
	escapedStar     = "${*}"
	escapedQuestion = "${?}"
	escapedDollar   = "${$}"
)

const arnSegmentCount = 6

// Regexp converts an AWS wildcard pattern into an anchored, case-sensitive
// regular expression: '*' matches any sequence, '?' any single character.
func Regexp(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteByte('^')

	for i := 0; i < len(pattern); i++ {
		rest := pattern[i:]
		switch {
		case strings.HasPrefix(rest, escapedStar):
			sb.WriteString(`\*`)
			i += len(escapedStar) - 1
		case strings.HasPrefix(rest, escapedQuestion):
			sb.WriteString(`\?`)
			i += len(escapedQuestion) - 1
		case strings.HasPrefix(rest, escapedDollar):
			sb.WriteString(`\$`)
			i += len(escapedDollar) - 1
		case pattern[i] == '*':
			sb.WriteString(`.*?`)
		case pattern[i] == '?':
			sb.WriteByte('.')
		default:
			sb.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		}
	}

	sb.WriteByte('$')
	return regexp.Compile(sb.String())
}

// Match reports whether s matches the wildcard pattern. A pattern that does
// not compile never matches.
func Match(pattern, s string) bool {
	re, err := Regexp(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// Unescape replaces the literal escape sequences with the characters they
// stand for. It is used for the exact-match comparisons, which do not expand
// wildcards at all.
func Unescape(s string) string {
	s = strings.ReplaceAll(s, escapedStar, "*")
	s = strings.ReplaceAll(s, escapedQuestion, "?")
	return strings.ReplaceAll(s, escapedDollar, "$")
}

// MatchARN compares a policy-supplied ARN with the request's ARN, one
// wildcard-aware comparison per segment. The policy ARN is split on ':' into
// exactly six segments; the sixth (the relative id) keeps any embedded
// colons and is compared against requestRelativeID, while the first five
// are compared against the corresponding entries of requestSegments.
//
// A 'utapi' policy ARN with an empty account segment skips the account
// comparison: utapi resource ARNs are issued without an account.
func MatchARN(policyArn, requestRelativeID string, requestSegments []string, caseSensitive bool) bool {
	if !caseSensitive {
		policyArn = strings.ToLower(policyArn)
		requestRelativeID = strings.ToLower(requestRelativeID)
		lowered := make([]string, len(requestSegments))
		for i, seg := range requestSegments {
			lowered[i] = strings.ToLower(seg)
		}
		requestSegments = lowered
	}

	policySegments := strings.SplitN(policyArn, ":", arnSegmentCount)
	if len(policySegments) != arnSegmentCount || len(requestSegments) < arnSegmentCount {
		return false
	}

	skipAccount := policySegments[2] == "utapi" && policySegments[4] == ""

	for i, policySegment := range policySegments {
		if i == 4 && skipAccount {
			continue
		}
		target := requestSegments[i]
		if i == arnSegmentCount-1 {
			target = requestRelativeID
		}
		if !Match(policySegment, target) {
			return false
		}
	}
	return true
}
