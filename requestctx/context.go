// Package requestctx models the evaluation-relevant snapshot of an incoming
// request: identity, transport attributes, target resource and the derived
// action/resource names the policy engine matches against.
package requestctx

// RequesterInfo identifies the authenticated entity making the request.
type RequesterInfo struct {
	Arn           string `json:"arn"`
	AccountID     string `json:"accountid"`
	ExternalID    string `json:"externalId"`
	ParentArn     string `json:"parentArn"`
	PrincipalType string `json:"principaltype"`
	UserID        string `json:"userid"`
	Username      string `json:"username"`
}

// Params carries every stored attribute of a RequestContext. Headers are
// case-sensitive; tag strings are query-string encoded ("k=v&k2=v2").
type Params struct {
	Headers            map[string]string
	Query              map[string]string
	ClientIP           string
	SSLEnabled         bool
	APIMethod          string
	Service            string
	GeneralResource    string
	SpecificResource   string
	LocationConstraint string
	RequesterInfo      RequesterInfo
	SignatureVersion   string
	SignatureAge       int64
	AuthType           string
	SecurityToken      string
	PolicyArn          string
	TokenIssueTime     string
	Action             string
	RequestObjTags     string
	ExistingObjTag     string
	NeedTagEval        bool
}

// RequestContext is created fresh per evaluation call. The action and
// resource getters memoize their result; setters touching their inputs
// drop the memo. Instances must not be shared across requests.
type RequestContext struct {
	headers            map[string]string
	query              map[string]string
	clientIP           string
	sslEnabled         bool
	apiMethod          string
	service            string
	generalResource    string
	specificResource   string
	locationConstraint string
	requesterInfo      RequesterInfo
	signatureVersion   string
	signatureAge       int64
	authType           string
	securityToken      string
	policyArn          string
	tokenIssueTime     string
	actionOverride     string
	requestObjTags     string
	existingObjTag     string
	needTagEval        bool

	actionMemo   string
	resourceMemo string
}

// New builds a RequestContext from the given attributes.
func New(p Params) *RequestContext {
	return &RequestContext{
		headers:            p.Headers,
		query:              p.Query,
		clientIP:           p.ClientIP,
		sslEnabled:         p.SSLEnabled,
		apiMethod:          p.APIMethod,
		service:            p.Service,
		generalResource:    p.GeneralResource,
		specificResource:   p.SpecificResource,
		locationConstraint: p.LocationConstraint,
		requesterInfo:      p.RequesterInfo,
		signatureVersion:   p.SignatureVersion,
		signatureAge:       p.SignatureAge,
		authType:           p.AuthType,
		securityToken:      p.SecurityToken,
		policyArn:          p.PolicyArn,
		tokenIssueTime:     p.TokenIssueTime,
		actionOverride:     p.Action,
		requestObjTags:     p.RequestObjTags,
		existingObjTag:     p.ExistingObjTag,
		needTagEval:        p.NeedTagEval,
	}
}

// Header returns the named header or "". Lookup is case-sensitive, matching
// the stored map.
func (rc *RequestContext) Header(name string) string { return rc.headers[name] }

// Query returns the named query parameter or "".
func (rc *RequestContext) Query(name string) string { return rc.query[name] }

func (rc *RequestContext) ClientIP() string            { return rc.clientIP }
func (rc *RequestContext) SSLEnabled() bool            { return rc.sslEnabled }
func (rc *RequestContext) APIMethod() string           { return rc.apiMethod }
func (rc *RequestContext) Service() string             { return rc.service }
func (rc *RequestContext) GeneralResource() string     { return rc.generalResource }
func (rc *RequestContext) SpecificResource() string    { return rc.specificResource }
func (rc *RequestContext) LocationConstraint() string  { return rc.locationConstraint }
func (rc *RequestContext) RequesterInfo() RequesterInfo { return rc.requesterInfo }
func (rc *RequestContext) SignatureVersion() string    { return rc.signatureVersion }
func (rc *RequestContext) SignatureAge() int64         { return rc.signatureAge }
func (rc *RequestContext) AuthType() string            { return rc.authType }
func (rc *RequestContext) SecurityToken() string       { return rc.securityToken }
func (rc *RequestContext) PolicyArn() string           { return rc.policyArn }
func (rc *RequestContext) TokenIssueTime() string      { return rc.tokenIssueTime }
func (rc *RequestContext) RequestObjTags() string      { return rc.requestObjTags }
func (rc *RequestContext) ExistingObjTag() string      { return rc.existingObjTag }
func (rc *RequestContext) NeedTagEval() bool           { return rc.needTagEval }

// SetAction sets an explicit action override taking precedence over the
// per-service action table.
func (rc *RequestContext) SetAction(action string) { rc.actionOverride = action }

// SetAPIMethod replaces the API method and invalidates the action memo.
func (rc *RequestContext) SetAPIMethod(apiMethod string) {
	rc.apiMethod = apiMethod
	rc.actionMemo = ""
}

// SetGeneralResource replaces the general resource identifier and
// invalidates the resource memo.
func (rc *RequestContext) SetGeneralResource(resource string) {
	rc.generalResource = resource
	rc.resourceMemo = ""
}

// SetSpecificResource replaces the specific resource identifier and
// invalidates the resource memo.
func (rc *RequestContext) SetSpecificResource(resource string) {
	rc.specificResource = resource
	rc.resourceMemo = ""
}

func (rc *RequestContext) SetRequestObjTags(tags string) { rc.requestObjTags = tags }
func (rc *RequestContext) SetExistingObjTag(tag string)  { rc.existingObjTag = tag }
func (rc *RequestContext) SetNeedTagEval(need bool)      { rc.needTagEval = need }

// Action returns the effective action name: the explicit override if set,
// else the per-service table entry for the API method. Unknown combinations
// yield "" and never match any statement.
func (rc *RequestContext) Action() string {
	if rc.actionOverride != "" {
		return rc.actionOverride
	}
	if rc.actionMemo == "" {
		rc.actionMemo = lookupAction(rc.service, rc.apiMethod)
	}
	return rc.actionMemo
}

// Resource returns the effective resource ARN built from the service
// template and the stored resource identifiers.
func (rc *RequestContext) Resource() string {
	if rc.resourceMemo == "" {
		rc.resourceMemo = buildResourceArn(rc)
	}
	return rc.resourceMemo
}
