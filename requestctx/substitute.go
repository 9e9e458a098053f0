package requestctx

import (
	"strconv"
	"strings"
	"time"
)

// SubstituteVariables replaces ${name} placeholders with context-derived
// values in a single left-to-right pass. Unknown names and unterminated
// tokens are left untouched, including the surrounding "${" and "}";
// replaced text is never re-scanned.
func SubstituteVariables(s string, rc *RequestContext) string {
	var sb strings.Builder

	for i := 0; i < len(s); {
		start := strings.Index(s[i:], "${")
		if start < 0 {
			sb.WriteString(s[i:])
			break
		}
		start += i
		sb.WriteString(s[i:start])

		end := strings.Index(s[start:], "}")
		if end < 0 {
			// trailing "${" with no closing brace stays as-is
			sb.WriteString(s[start:])
			break
		}
		end += start

		if value, ok := rc.variable(s[start+2 : end]); ok {
			sb.WriteString(value)
		} else {
			sb.WriteString(s[start : end+1])
		}
		i = end + 1
	}

	return sb.String()
}

// variable resolves the fixed set of substitutable policy variables.
// Literal-escape names ("*", "?", "$") fall through unresolved on purpose:
// the pattern matcher owns those sequences.
func (rc *RequestContext) variable(name string) (string, bool) {
	switch name {
	case "aws:CurrentTime":
		return time.Now().UTC().Format(time.RFC3339), true
	case "aws:EpochTime":
		return strconv.FormatInt(time.Now().Unix(), 10), true
	case "aws:TokenIssueTime":
		if rc.tokenIssueTime == "" {
			return "", false
		}
		return rc.tokenIssueTime, true
	case "aws:principaltype":
		if rc.requesterInfo.PrincipalType == "" {
			return "", false
		}
		return rc.requesterInfo.PrincipalType, true
	case "aws:SecureTransport":
		return strconv.FormatBool(rc.sslEnabled), true
	case "aws:SourceIp":
		if rc.clientIP == "" {
			return "", false
		}
		return rc.clientIP, true
	case "aws:UserAgent":
		if v := rc.Header("user-agent"); v != "" {
			return v, true
		}
		return "", false
	case "aws:userid":
		if rc.requesterInfo.UserID == "" {
			return "", false
		}
		return rc.requesterInfo.UserID, true
	case "aws:username":
		if rc.requesterInfo.Username == "" {
			return "", false
		}
		return rc.requesterInfo.Username, true
	case "s3:prefix", "s3:max-keys", "s3:x-amz-acl":
		if v := rc.Query(strings.TrimPrefix(name, "s3:")); v != "" {
			return v, true
		}
		return "", false
	}
	return "", false
}
