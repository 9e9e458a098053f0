package misc

const (
	// ApplicationName is the authorizer binary name.
	ApplicationName = "s3-authz"

	// Prefix is configuration environment variables prefix.
	Prefix = "S3_AUTHZ"
)

var (
	// Version contains application version.
	Version = "dev"
)
