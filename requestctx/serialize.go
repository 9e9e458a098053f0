package requestctx

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodeError reports a corrupted RequestContext record. Callers must treat
// it as a structural failure, never as a Deny verdict.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed request context record: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// record is the flat transport form of a RequestContext.
type record struct {
	Headers            map[string]string `json:"headers"`
	Query              map[string]string `json:"query"`
	RequesterIP        string            `json:"requesterIp"`
	SSLEnabled         bool              `json:"sslEnabled"`
	APIMethod          string            `json:"apiMethod"`
	AWSService         string            `json:"awsService"`
	GeneralResource    string            `json:"generalResource"`
	SpecificResource   string            `json:"specificResource"`
	LocationConstraint string            `json:"locationConstraint"`
	RequesterInfo      RequesterInfo     `json:"requesterInfo"`
	SignatureVersion   string            `json:"signatureVersion"`
	SignatureAge       int64             `json:"signatureAge"`
	AuthType           string            `json:"authType"`
	SecurityToken      string            `json:"securityToken"`
	PolicyArn          string            `json:"policyArn"`
	TokenIssueTime     string            `json:"tokenIssueTime,omitempty"`
	Action             string            `json:"action,omitempty"`
	RequestObjTags     string            `json:"requestObjTags,omitempty"`
	ExistingObjTag     string            `json:"existingObjTag,omitempty"`
	NeedTagEval        bool              `json:"needTagEval"`
}

// Serialize flattens the context for cross-process transport. Memoized
// values are derived state and are not part of the record.
func (rc *RequestContext) Serialize() ([]byte, error) {
	return json.Marshal(record{
		Headers:            rc.headers,
		Query:              rc.query,
		RequesterIP:        rc.clientIP,
		SSLEnabled:         rc.sslEnabled,
		APIMethod:          rc.apiMethod,
		AWSService:         rc.service,
		GeneralResource:    rc.generalResource,
		SpecificResource:   rc.specificResource,
		LocationConstraint: rc.locationConstraint,
		RequesterInfo:      rc.requesterInfo,
		SignatureVersion:   rc.signatureVersion,
		SignatureAge:       rc.signatureAge,
		AuthType:           rc.authType,
		SecurityToken:      rc.securityToken,
		PolicyArn:          rc.policyArn,
		TokenIssueTime:     rc.tokenIssueTime,
		Action:             rc.actionOverride,
		RequestObjTags:     rc.requestObjTags,
		ExistingObjTag:     rc.existingObjTag,
		NeedTagEval:        rc.needTagEval,
	})
}

// Deserialize rebuilds a RequestContext from its transport record. A record
// that does not parse surfaces a *DecodeError.
func Deserialize(data []byte) (*RequestContext, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return New(Params{
		Headers:            rec.Headers,
		Query:              rec.Query,
		ClientIP:           rec.RequesterIP,
		SSLEnabled:         rec.SSLEnabled,
		APIMethod:          rec.APIMethod,
		Service:            rec.AWSService,
		GeneralResource:    rec.GeneralResource,
		SpecificResource:   rec.SpecificResource,
		LocationConstraint: rec.LocationConstraint,
		RequesterInfo:      rec.RequesterInfo,
		SignatureVersion:   rec.SignatureVersion,
		SignatureAge:       rec.SignatureAge,
		AuthType:           rec.AuthType,
		SecurityToken:      rec.SecurityToken,
		PolicyArn:          rec.PolicyArn,
		TokenIssueTime:     rec.TokenIssueTime,
		Action:             rec.Action,
		RequestObjTags:     rec.RequestObjTags,
		ExistingObjTag:     rec.ExistingObjTag,
		NeedTagEval:        rec.NeedTagEval,
	}), nil
}
