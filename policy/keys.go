package policy

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/calaveras-io/s3authz/requestctx"
)

const (
	existingObjTagPrefix    = "s3:ExistingObjectTag/"
	requestObjTagKeyPrefix  = "s3:RequestObjectTagKey/"
	requestObjTagKeysKey    = "s3:RequestObjectTagKeys"
	tagConditionKeyPrefixEx = "s3:ExistingObjectTag"
	tagConditionKeyPrefixRq = "s3:RequestObjectTagKey"
)

// isTagConditionKey reports whether key depends on object-tag data that is
// only available in the second evaluation pass.
func isTagConditionKey(key string) bool {
	return strings.HasPrefix(key, tagConditionKeyPrefixEx) ||
		strings.HasPrefix(key, tagConditionKeyPrefixRq)
}

// resolveConditionKey maps a condition key to the values it takes for this
// request. It returns the resolved values, the (possibly transformed)
// policy-supplied comparison values and whether the key is present.
//
// Tag-key-suffixed forms fold the tag name from the key into the comparison
// values ("<K>=<value>") and resolve against the "k=v" entries of the
// stored tag string; they are absent while NeedTagEval is false.
func resolveConditionKey(key string, values []string, rc *requestctx.RequestContext) ([]string, []string, bool) {
	if isTagConditionKey(key) && !rc.NeedTagEval() {
		return nil, values, false
	}

	switch {
	case strings.HasPrefix(key, existingObjTagPrefix):
		entries := tagEntries(rc.ExistingObjTag())
		if len(entries) == 0 {
			return nil, values, false
		}
		return entries, foldTagKey(strings.TrimPrefix(key, existingObjTagPrefix), values), true
	case strings.HasPrefix(key, requestObjTagKeyPrefix):
		entries := tagEntries(rc.RequestObjTags())
		if len(entries) == 0 {
			return nil, values, false
		}
		return entries, foldTagKey(strings.TrimPrefix(key, requestObjTagKeyPrefix), values), true
	case key == requestObjTagKeysKey:
		keys := tagKeys(rc.RequestObjTags())
		if len(keys) == 0 {
			return nil, values, false
		}
		return keys, values, true
	}

	value, found := lookupContextKey(key, rc)
	if !found {
		return nil, values, false
	}
	return []string{value}, values, true
}

// foldTagKey prefixes every comparison value with the tag name taken from
// the condition-key suffix, matching the "k=v" shape of tag entries.
func foldTagKey(tagKey string, values []string) []string {
	folded := make([]string, len(values))
	for i, v := range values {
		folded[i] = tagKey + "=" + v
	}
	return folded
}

// tagEntries splits a query-string-encoded tag set into decoded "k=v"
// entries. Malformed escapes keep their raw text.
func tagEntries(tags string) []string {
	if tags == "" {
		return nil
	}
	parts := strings.Split(tags, "&")
	entries := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		entries = append(entries, queryUnescape(k)+"="+queryUnescape(v))
	}
	return entries
}

// tagKeys returns the decoded tag key names of a query-string-encoded tag
// set.
func tagKeys(tags string) []string {
	if tags == "" {
		return nil
	}
	parts := strings.Split(tags, "&")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		k, _, _ := strings.Cut(part, "=")
		keys = append(keys, queryUnescape(k))
	}
	return keys
}

func queryUnescape(s string) string {
	unescaped, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return unescaped
}

// lookupContextKey implements the fixed table of single-valued condition
// keys. Unlisted keys are absent.
func lookupContextKey(key string, rc *requestctx.RequestContext) (string, bool) {
	switch key {
	case "aws:CurrentTime":
		return time.Now().UTC().Format(time.RFC3339), true
	case "aws:EpochTime":
		return strconv.FormatInt(time.Now().Unix(), 10), true
	case "aws:TokenIssueTime":
		return nonEmpty(rc.TokenIssueTime())
	case "aws:PrincipalArn":
		return nonEmpty(rc.RequesterInfo().Arn)
	case "aws:PrincipalAccount":
		return nonEmpty(rc.RequesterInfo().AccountID)
	case "aws:principaltype":
		return nonEmpty(rc.RequesterInfo().PrincipalType)
	case "aws:SecureTransport":
		return strconv.FormatBool(rc.SSLEnabled()), true
	case "aws:SourceIp":
		return nonEmpty(rc.ClientIP())
	case "aws:UserAgent":
		return nonEmpty(rc.Header("user-agent"))
	case "aws:referer":
		return nonEmpty(rc.Header("referer"))
	case "aws:userid":
		return nonEmpty(rc.RequesterInfo().UserID)
	case "aws:username":
		return nonEmpty(rc.RequesterInfo().Username)
	case "iam:PolicyArn":
		return nonEmpty(rc.PolicyArn())
	case "sts:ExternalId":
		return nonEmpty(rc.RequesterInfo().ExternalID)
	case "s3:authType":
		return nonEmpty(rc.AuthType())
	case "s3:signatureversion":
		return nonEmpty(rc.SignatureVersion())
	case "s3:signatureAge":
		// milliseconds since the request signature was issued
		return strconv.FormatInt(rc.SignatureAge(), 10), true
	case "s3:LocationConstraint":
		return nonEmpty(rc.LocationConstraint())
	case "s3:delimiter":
		return nonEmpty(rc.Query("delimiter"))
	case "s3:max-keys":
		return nonEmpty(rc.Query("max-keys"))
	case "s3:prefix":
		return nonEmpty(rc.Query("prefix"))
	case "s3:VersionId":
		return nonEmpty(rc.Query("versionId"))
	case "s3:x-amz-acl":
		if v := rc.Query("x-amz-acl"); v != "" {
			return v, true
		}
		return nonEmpty(rc.Header("x-amz-acl"))
	}

	// the remaining s3 keys mirror request headers one-to-one
	// (x-amz-grant-*, x-amz-copy-source, x-amz-metadata-directive,
	// x-amz-server-side-encryption*, x-amz-storage-class,
	// x-amz-website-redirect-location, x-amz-content-sha256)
	if name, ok := strings.CutPrefix(key, "s3:x-amz-"); ok {
		return nonEmpty(rc.Header("x-amz-" + name))
	}

	return "", false
}

func nonEmpty(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	return s, true
}
