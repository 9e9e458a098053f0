package wildcards

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegexpWildcards(t *testing.T) {
	for _, tc := range []struct {
		pattern string
		input   string
		match   bool
	}{
		{"a*b?c", "axxxbyc", true},
		{"a*b?c", "abyc", true},
		{"a*b?c", "abc", false},
		{"a*", "a", true},
		{"*", "anything at all", true},
		{"?", "x", true},
		{"?", "xy", false},
		{"bucket/*", "bucket/key", true},
		{"bucket/*", "bucket2/key", false},
		// literal escapes win over wildcard semantics
		{"a${*}b", "a*b", true},
		{"a${*}b", "axb", false},
		{"a${?}b", "a?b", true},
		{"a${?}b", "axb", false},
		{"a${$}b", "a$b", true},
		{"a${$}b", "ab", false},
		// regexp metacharacters are inert
		{"a.b", "a.b", true},
		{"a.b", "axb", false},
		{"a+b", "a+b", true},
	} {
		require.Equal(t, tc.match, Match(tc.pattern, tc.input),
			"pattern %q against %q", tc.pattern, tc.input)
	}
}

func TestRegexpCaseSensitive(t *testing.T) {
	require.True(t, Match("Bucket*", "BucketA"))
	require.False(t, Match("Bucket*", "bucketA"))
}

func TestUnescape(t *testing.T) {
	require.Equal(t, "a*b?c$d", Unescape("a${*}b${?}c${$}d"))
	require.Equal(t, "plain", Unescape("plain"))
}

func TestMatchARN(t *testing.T) {
	request := []string{"arn", "aws", "s3", "", "", "bucket/key"}

	require.True(t, MatchARN("arn:aws:s3:::bucket/*", "bucket/key", request, true))
	require.True(t, MatchARN("arn:aws:s3:::bucket/key", "bucket/key", request, true))
	require.False(t, MatchARN("arn:aws:s3:::other/*", "bucket/key", request, true))
	require.False(t, MatchARN("not-an-arn", "bucket/key", request, true))

	// differing account with no wildcard never matches
	withAccount := []string{"arn", "aws", "iam", "", "123456789012", "user/bart"}
	require.False(t, MatchARN("arn:aws:iam::999999999999:user/*", "user/bart", withAccount, true))
	require.True(t, MatchARN("arn:aws:iam::123456789012:user/*", "user/bart", withAccount, true))
}

func TestMatchARNRelativeIDKeepsColons(t *testing.T) {
	request := []string{"arn", "aws", "s3", "", "", "bucket/key:with:colons"}
	require.True(t, MatchARN("arn:aws:s3:::bucket/*", "bucket/key:with:colons", request, true))
}

func TestMatchARNUtapiAccountException(t *testing.T) {
	request := []string{"arn", "scality", "utapi", "", "123456789012", "buckets/b"}
	// empty account segment on a utapi ARN matches any account
	require.True(t, MatchARN("arn:scality:utapi:::buckets/*", "buckets/b", request, true))
	// a concrete mismatching account still fails
	require.False(t, MatchARN("arn:scality:utapi::999999999999:buckets/*", "buckets/b", request, true))
	// the exception is utapi-specific
	s3request := []string{"arn", "aws", "s3", "", "123456789012", "bucket"}
	require.False(t, MatchARN("arn:aws:s3:::bucket", "bucket", s3request, true))
}

func TestMatchARNCaseInsensitive(t *testing.T) {
	request := []string{"arn", "aws", "s3", "", "", "Bucket/Key"}
	require.False(t, MatchARN("arn:aws:s3:::bucket/*", "Bucket/Key", request, true))
	require.True(t, MatchARN("arn:aws:s3:::bucket/*", "Bucket/Key", request, false))
}
