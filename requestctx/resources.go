package requestctx

import "strings"

// Per-service ARN templates. AWS-compatible services keep the aws
// partition, platform services use the scality partition.
//
//	s3:        arn:aws:s3:::<general>[/<specific>]
//	iam, sts:  arn:aws:<service>::<account>:<general>[/<specific>]
//	sso:       arn:scality:sso:::<general>[/<specific>]
//	others:    arn:scality:<service>::<account>:<general>[/<specific>]
func buildResourceArn(rc *RequestContext) string {
	var sb strings.Builder

	switch rc.service {
	case ServiceS3:
		sb.WriteString("arn:aws:s3:::")
	case ServiceIAM, ServiceSTS:
		sb.WriteString("arn:aws:")
		sb.WriteString(rc.service)
		sb.WriteString("::")
		sb.WriteString(rc.requesterInfo.AccountID)
		sb.WriteString(":")
	case ServiceSSO:
		sb.WriteString("arn:scality:sso:::")
	case ServiceRing, ServiceUtapi, ServiceMetadata:
		sb.WriteString("arn:scality:")
		sb.WriteString(rc.service)
		sb.WriteString("::")
		sb.WriteString(rc.requesterInfo.AccountID)
		sb.WriteString(":")
	default:
		return ""
	}

	sb.WriteString(rc.generalResource)
	if rc.specificResource != "" {
		sb.WriteString("/")
		sb.WriteString(rc.specificResource)
	}
	return sb.String()
}
