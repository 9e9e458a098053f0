package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calaveras-io/s3authz/requestctx"
)

func principalContext(t *testing.T, info requestctx.RequesterInfo) *requestctx.RequestContext {
	t.Helper()
	return requestctx.New(requestctx.Params{
		Service:       requestctx.ServiceSTS,
		APIMethod:     "assumeRole",
		RequesterInfo: info,
	})
}

func TestEvaluatePrincipalSameAccountUser(t *testing.T) {
	rc := principalContext(t, requestctx.RequesterInfo{
		Arn:           "arn:aws:iam::123456789012:user/bart",
		AccountID:     "123456789012",
		PrincipalType: "User",
	})

	trust := mustParse(t, `{"Statement": {
		"Effect": "Allow",
		"Principal": {"AWS": "arn:aws:iam::123456789012:user/bart"},
		"Action": "sts:AssumeRole"
	}}`)

	res := EvaluatePrincipal(PrincipalParams{
		Context:         rc,
		TrustedPolicy:   trust,
		TargetAccountID: "123456789012",
	})
	require.Equal(t, PrincipalResult{Effect: Allow, CheckAction: false}, res)
}

func TestEvaluatePrincipalAccountIDAndRootForms(t *testing.T) {
	rc := principalContext(t, requestctx.RequesterInfo{
		Arn:           "arn:aws:iam::123456789012:user/bart",
		AccountID:     "123456789012",
		PrincipalType: "User",
	})

	for _, entry := range []string{"123456789012", "arn:aws:iam::123456789012:root"} {
		trust := mustParse(t, `{"Statement": {
			"Effect": "Allow", "Principal": {"AWS": "`+entry+`"}
		}}`)
		res := EvaluatePrincipal(PrincipalParams{
			Context: rc, TrustedPolicy: trust, TargetAccountID: "123456789012",
		})
		require.Equal(t, Allow, res.Effect, entry)
	}
}

func TestEvaluatePrincipalCrossAccount(t *testing.T) {
	rc := principalContext(t, requestctx.RequesterInfo{
		Arn:           "arn:aws:iam::111122223333:user/lisa",
		AccountID:     "111122223333",
		PrincipalType: "User",
	})

	trust := mustParse(t, `{"Statement": {
		"Effect": "Allow",
		"Principal": {"AWS": "arn:aws:iam::111122223333:user/lisa"}
	}}`)

	res := EvaluatePrincipal(PrincipalParams{
		Context:         rc,
		TrustedPolicy:   trust,
		TargetAccountID: "123456789012",
	})
	require.Equal(t, PrincipalResult{Effect: Allow, CheckAction: true}, res)

	// an unrelated cross-account requester falls through to the default deny
	other := principalContext(t, requestctx.RequesterInfo{
		Arn:           "arn:aws:iam::444455556666:user/nelson",
		AccountID:     "444455556666",
		PrincipalType: "User",
	})
	res = EvaluatePrincipal(PrincipalParams{
		Context:         other,
		TrustedPolicy:   trust,
		TargetAccountID: "123456789012",
	})
	require.Equal(t, PrincipalResult{Effect: Deny, CheckAction: true}, res)
}

func TestEvaluatePrincipalAssumedRoleParent(t *testing.T) {
	rc := principalContext(t, requestctx.RequesterInfo{
		Arn:           "arn:aws:sts::123456789012:assumed-role/backup/session",
		ParentArn:     "arn:aws:iam::123456789012:role/backup",
		AccountID:     "123456789012",
		PrincipalType: "AssumedRole",
	})

	trust := mustParse(t, `{"Statement": {
		"Effect": "Allow",
		"Principal": {"AWS": "arn:aws:iam::123456789012:role/backup"}
	}}`)

	res := EvaluatePrincipal(PrincipalParams{
		Context: rc, TrustedPolicy: trust, TargetAccountID: "123456789012",
	})
	require.Equal(t, Allow, res.Effect)
}

func TestEvaluatePrincipalFederatedAndService(t *testing.T) {
	fed := principalContext(t, requestctx.RequesterInfo{
		Arn:           "arn:aws:iam::123456789012:saml-provider/corp",
		AccountID:     "123456789012",
		PrincipalType: "Federated",
	})
	trust := mustParse(t, `{"Statement": {
		"Effect": "Allow",
		"Principal": {"Federated": "arn:aws:iam::123456789012:saml-provider/corp"}
	}}`)
	res := EvaluatePrincipal(PrincipalParams{
		Context: fed, TrustedPolicy: trust, TargetAccountID: "123456789012",
	})
	require.Equal(t, Allow, res.Effect)

	// a federated identity never matches the AWS category
	awsOnly := mustParse(t, `{"Statement": {
		"Effect": "Allow",
		"Principal": {"AWS": "arn:aws:iam::123456789012:saml-provider/corp"}
	}}`)
	res = EvaluatePrincipal(PrincipalParams{
		Context: fed, TrustedPolicy: awsOnly, TargetAccountID: "123456789012",
	})
	require.Equal(t, Deny, res.Effect)

	svc := principalContext(t, requestctx.RequesterInfo{
		Arn:           "backbeat.scality.com",
		AccountID:     "123456789012",
		PrincipalType: "Service",
	})
	svcTrust := mustParse(t, `{"Statement": {
		"Effect": "Allow", "Principal": {"Service": "backbeat.scality.com"}
	}}`)
	res = EvaluatePrincipal(PrincipalParams{
		Context: svc, TrustedPolicy: svcTrust, TargetAccountID: "123456789012",
	})
	require.Equal(t, Allow, res.Effect)
}

func TestEvaluatePrincipalWildcardForms(t *testing.T) {
	rc := principalContext(t, requestctx.RequesterInfo{
		Arn:           "arn:aws:iam::123456789012:user/bart",
		AccountID:     "123456789012",
		PrincipalType: "User",
	})

	bare := mustParse(t, `{"Statement": {"Effect": "Allow", "Principal": "*"}}`)
	res := EvaluatePrincipal(PrincipalParams{
		Context: rc, TrustedPolicy: bare, TargetAccountID: "123456789012",
	})
	require.Equal(t, Allow, res.Effect)

	starEntry := mustParse(t, `{"Statement": {
		"Effect": "Allow", "Principal": {"AWS": "*"}
	}}`)
	res = EvaluatePrincipal(PrincipalParams{
		Context: rc, TrustedPolicy: starEntry, TargetAccountID: "123456789012",
	})
	require.Equal(t, Allow, res.Effect)

	// NotPrincipal "*" excludes everyone
	notAll := mustParse(t, `{"Statement": {"Effect": "Allow", "NotPrincipal": "*"}}`)
	res = EvaluatePrincipal(PrincipalParams{
		Context: rc, TrustedPolicy: notAll, TargetAccountID: "123456789012",
	})
	require.Equal(t, Deny, res.Effect)
}

func TestEvaluatePrincipalNotPrincipal(t *testing.T) {
	rc := principalContext(t, requestctx.RequesterInfo{
		Arn:           "arn:aws:iam::123456789012:user/bart",
		AccountID:     "123456789012",
		PrincipalType: "User",
	})

	excluded := mustParse(t, `{"Statement": {
		"Effect": "Allow",
		"NotPrincipal": {"AWS": "arn:aws:iam::123456789012:user/bart"}
	}}`)
	res := EvaluatePrincipal(PrincipalParams{
		Context: rc, TrustedPolicy: excluded, TargetAccountID: "123456789012",
	})
	require.Equal(t, Deny, res.Effect)

	admitted := mustParse(t, `{"Statement": {
		"Effect": "Allow",
		"NotPrincipal": {"AWS": "arn:aws:iam::123456789012:user/milhouse"}
	}}`)
	res = EvaluatePrincipal(PrincipalParams{
		Context: rc, TrustedPolicy: admitted, TargetAccountID: "123456789012",
	})
	require.Equal(t, Allow, res.Effect)
}

func TestEvaluatePrincipalDenyPrecedence(t *testing.T) {
	rc := principalContext(t, requestctx.RequesterInfo{
		Arn:           "arn:aws:iam::123456789012:user/bart",
		AccountID:     "123456789012",
		PrincipalType: "User",
	})

	trust := mustParse(t, `{"Statement": [
		{"Effect": "Allow", "Principal": "*"},
		{"Effect": "Deny", "Principal": {"AWS": "arn:aws:iam::123456789012:user/bart"}}
	]}`)
	res := EvaluatePrincipal(PrincipalParams{
		Context: rc, TrustedPolicy: trust, TargetAccountID: "123456789012",
	})
	require.Equal(t, Deny, res.Effect)
}

func TestEvaluatePrincipalConditionGated(t *testing.T) {
	rc := requestctx.New(requestctx.Params{
		Service:   requestctx.ServiceSTS,
		APIMethod: "assumeRole",
		RequesterInfo: requestctx.RequesterInfo{
			Arn:           "arn:aws:iam::111122223333:user/lisa",
			AccountID:     "111122223333",
			ExternalID:    "deploy-42",
			PrincipalType: "User",
		},
	})

	trust := mustParse(t, `{"Statement": {
		"Effect": "Allow",
		"Principal": {"AWS": "111122223333"},
		"Condition": {"StringEquals": {"sts:ExternalId": "deploy-42"}}
	}}`)
	res := EvaluatePrincipal(PrincipalParams{
		Context: rc, TrustedPolicy: trust, TargetAccountID: "123456789012",
	})
	require.Equal(t, Allow, res.Effect)

	wrong := mustParse(t, `{"Statement": {
		"Effect": "Allow",
		"Principal": {"AWS": "111122223333"},
		"Condition": {"StringEquals": {"sts:ExternalId": "deploy-99"}}
	}}`)
	res = EvaluatePrincipal(PrincipalParams{
		Context: rc, TrustedPolicy: wrong, TargetAccountID: "123456789012",
	})
	require.Equal(t, Deny, res.Effect)
}

func TestEvaluatePrincipalNilPolicy(t *testing.T) {
	rc := principalContext(t, requestctx.RequesterInfo{
		Arn:           "arn:aws:iam::123456789012:user/bart",
		AccountID:     "123456789012",
		PrincipalType: "User",
	})
	res := EvaluatePrincipal(PrincipalParams{
		Context: rc, TargetAccountID: "123456789012",
	})
	require.Equal(t, Deny, res.Effect)
}
