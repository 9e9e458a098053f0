// Package policy implements the authorization decision engine: policy
// document model, condition-operator algebra, statement evaluation,
// multi-policy aggregation and trust-policy (Principal) evaluation.
package policy

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Effect is a statement's outcome when it applies.
type Effect string

const (
	EffectAllow Effect = "Allow"
	EffectDeny  Effect = "Deny"
)

// StringOrList decodes a JSON value that may be a single string or a list
// of strings into a list.
type StringOrList []string

func (s *StringOrList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = StringOrList{one}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = list
	return nil
}

// ConditionBlock maps an operator token (e.g. "StringEquals",
// "ForAnyValue:StringLikeIfExists") to condition keys and their
// policy-supplied values.
type ConditionBlock map[string]map[string]StringOrList

// Principal is the Principal/NotPrincipal field of a trust-policy
// statement: either the universal "*" or a set of identity strings per
// category.
type Principal struct {
	Wildcard      bool
	AWS           []string
	CanonicalUser []string
	Federated     []string
	Service       []string
}

func (p *Principal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "*" {
			p.Wildcard = true
		} else {
			p.AWS = []string{s}
		}
		return nil
	}
	var obj struct {
		AWS           StringOrList `json:"AWS"`
		CanonicalUser StringOrList `json:"CanonicalUser"`
		Federated     StringOrList `json:"Federated"`
		Service       StringOrList `json:"Service"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	p.AWS = obj.AWS
	p.CanonicalUser = obj.CanonicalUser
	p.Federated = obj.Federated
	p.Service = obj.Service
	return nil
}

// Statement is one rule within a policy. Absent fields leave that aspect
// of the request unconstrained.
type Statement struct {
	Sid          string         `json:"Sid,omitempty"`
	Effect       Effect         `json:"Effect"`
	Principal    *Principal     `json:"Principal,omitempty"`
	NotPrincipal *Principal     `json:"NotPrincipal,omitempty"`
	Action       StringOrList   `json:"Action,omitempty"`
	NotAction    StringOrList   `json:"NotAction,omitempty"`
	Resource     StringOrList   `json:"Resource,omitempty"`
	NotResource  StringOrList   `json:"NotResource,omitempty"`
	Condition    ConditionBlock `json:"Condition,omitempty"`
}

// StatementList normalizes a single statement object to a one-element list.
type StatementList []Statement

func (l *StatementList) UnmarshalJSON(data []byte) error {
	var list []Statement
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var one Statement
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = StatementList{one}
	return nil
}

// Policy is an already-validated policy document. A missing Statement field
// simply evaluates to Neutral.
type Policy struct {
	Version   string        `json:"Version,omitempty"`
	ID        string        `json:"Id,omitempty"`
	Statement StatementList `json:"Statement,omitempty"`
}

// Parse decodes a policy document. Schema validation is a concern of the
// policy supplier; Parse only requires well-formed JSON.
func Parse(data []byte) (*Policy, error) {
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
