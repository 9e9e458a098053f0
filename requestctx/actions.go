package requestctx

// Supported target services.
const (
	ServiceS3       = "s3"
	ServiceIAM      = "iam"
	ServiceSTS      = "sts"
	ServiceSSO      = "sso"
	ServiceRing     = "ring"
	ServiceUtapi    = "utapi"
	ServiceMetadata = "metadata"
)

// Static per-service maps from internal API-method name to the externally
// visible action string. Supplied as data; the engine only does lookups.
var s3Actions = map[string]string{
	"bucketDelete":            "s3:DeleteBucket",
	"bucketDeleteCors":        "s3:PutBucketCORS",
	"bucketDeletePolicy":      "s3:DeleteBucketPolicy",
	"bucketDeleteWebsite":     "s3:DeleteBucketWebsite",
	"bucketGet":               "s3:ListBucket",
	"bucketGetACL":            "s3:GetBucketAcl",
	"bucketGetCors":           "s3:GetBucketCORS",
	"bucketGetLifecycle":      "s3:GetLifecycleConfiguration",
	"bucketGetLocation":       "s3:GetBucketLocation",
	"bucketGetNotification":   "s3:GetBucketNotification",
	"bucketGetObjectLock":     "s3:GetBucketObjectLockConfiguration",
	"bucketGetPolicy":         "s3:GetBucketPolicy",
	"bucketGetReplication":    "s3:GetReplicationConfiguration",
	"bucketGetVersioning":     "s3:GetBucketVersioning",
	"bucketGetWebsite":        "s3:GetBucketWebsite",
	"bucketHead":              "s3:ListBucket",
	"bucketPut":               "s3:CreateBucket",
	"bucketPutACL":            "s3:PutBucketAcl",
	"bucketPutCors":           "s3:PutBucketCORS",
	"bucketPutLifecycle":      "s3:PutLifecycleConfiguration",
	"bucketPutNotification":   "s3:PutBucketNotification",
	"bucketPutObjectLock":     "s3:PutBucketObjectLockConfiguration",
	"bucketPutPolicy":         "s3:PutBucketPolicy",
	"bucketPutReplication":    "s3:PutReplicationConfiguration",
	"bucketPutVersioning":     "s3:PutBucketVersioning",
	"bucketPutWebsite":        "s3:PutBucketWebsite",
	"completeMultipartUpload": "s3:PutObject",
	"initiateMultipartUpload": "s3:PutObject",
	"listMultipartUploads":    "s3:ListBucketMultipartUploads",
	"listParts":               "s3:ListMultipartUploadParts",
	"multipartDelete":         "s3:AbortMultipartUpload",
	"objectCopy":              "s3:PutObject",
	"objectDelete":            "s3:DeleteObject",
	"objectDeleteTagging":     "s3:DeleteObjectTagging",
	"objectGet":               "s3:GetObject",
	"objectGetACL":            "s3:GetObjectAcl",
	"objectGetLegalHold":      "s3:GetObjectLegalHold",
	"objectGetRetention":      "s3:GetObjectRetention",
	"objectGetTagging":        "s3:GetObjectTagging",
	"objectHead":              "s3:GetObject",
	"objectPut":               "s3:PutObject",
	"objectPutACL":            "s3:PutObjectAcl",
	"objectPutLegalHold":      "s3:PutObjectLegalHold",
	"objectPutPart":           "s3:PutObject",
	"objectPutRetention":      "s3:PutObjectRetention",
	"objectPutTagging":        "s3:PutObjectTagging",
	"serviceGet":              "s3:ListAllMyBuckets",
}

var iamActions = map[string]string{
	"addUserToGroup":        "iam:AddUserToGroup",
	"attachGroupPolicy":     "iam:AttachGroupPolicy",
	"attachUserPolicy":      "iam:AttachUserPolicy",
	"createAccessKey":       "iam:CreateAccessKey",
	"createGroup":           "iam:CreateGroup",
	"createPolicy":          "iam:CreatePolicy",
	"createPolicyVersion":   "iam:CreatePolicyVersion",
	"createUser":            "iam:CreateUser",
	"deleteAccessKey":       "iam:DeleteAccessKey",
	"deleteGroup":           "iam:DeleteGroup",
	"deleteGroupPolicy":     "iam:DeleteGroupPolicy",
	"deletePolicy":          "iam:DeletePolicy",
	"deletePolicyVersion":   "iam:DeletePolicyVersion",
	"deleteUser":            "iam:DeleteUser",
	"detachGroupPolicy":     "iam:DetachGroupPolicy",
	"detachUserPolicy":      "iam:DetachUserPolicy",
	"getGroup":              "iam:GetGroup",
	"getPolicy":             "iam:GetPolicy",
	"getPolicyVersion":      "iam:GetPolicyVersion",
	"getUser":               "iam:GetUser",
	"listAccessKeys":        "iam:ListAccessKeys",
	"listAttachedUserPolicies": "iam:ListAttachedUserPolicies",
	"listEntitiesForPolicy": "iam:ListEntitiesForPolicy",
	"listGroupPolicies":     "iam:ListGroupPolicies",
	"listGroups":            "iam:ListGroups",
	"listGroupsForUser":     "iam:ListGroupsForUser",
	"listPolicies":          "iam:ListPolicies",
	"listPolicyVersions":    "iam:ListPolicyVersions",
	"listUsers":             "iam:ListUsers",
	"putGroupPolicy":        "iam:PutGroupPolicy",
	"removeUserFromGroup":   "iam:RemoveUserFromGroup",
}

var stsActions = map[string]string{
	"assumeRole":                "sts:AssumeRole",
	"assumeRoleWithWebIdentity": "sts:AssumeRoleWithWebIdentity",
	"getSessionToken":           "sts:GetSessionToken",
}

var ssoActions = map[string]string{
	"SsoAuthorize": "sso:Authorize",
}

var ringActions = map[string]string{
	"getRing":     "ring:GetRing",
	"listServers": "ring:ListServers",
	"updateRing":  "ring:UpdateRing",
}

var utapiActions = map[string]string{
	"ListMetrics": "utapi:ListMetrics",
}

var metadataActions = map[string]string{
	"admin":   "metadata:admin",
	"default": "metadata:bucketd",
}

var serviceActions = map[string]map[string]string{
	ServiceS3:       s3Actions,
	ServiceIAM:      iamActions,
	ServiceSTS:      stsActions,
	ServiceSSO:      ssoActions,
	ServiceRing:     ringActions,
	ServiceUtapi:    utapiActions,
	ServiceMetadata: metadataActions,
}

func lookupAction(service, apiMethod string) string {
	actions, ok := serviceActions[service]
	if !ok {
		return ""
	}
	return actions[apiMethod]
}
