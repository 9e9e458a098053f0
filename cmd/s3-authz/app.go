package main

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/calaveras-io/s3authz/policy"
	"github.com/calaveras-io/s3authz/requestctx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	// App evaluates authorization requests against a fixed policy set,
	// either once from the command line or behind an HTTP endpoint.
	App struct {
		log *zap.Logger
		cfg *viper.Viper

		eval     *policy.Evaluator
		metrics  *policy.Metrics
		policies []*policy.Policy

		trustPolicy   *policy.Policy
		targetAccount string
	}

	decision struct {
		Verdict  policy.Verdict `json:"verdict"`
		Implicit bool           `json:"implicit,omitempty"`
	}

	principalDecision struct {
		Effect      policy.Verdict `json:"effect"`
		CheckAction bool           `json:"checkAction"`
	}
)

func newApp(l *zap.Logger, v *viper.Viper) *App {
	a := &App{log: l, cfg: v}

	if v.GetBool(cfgEnableMetrics) {
		a.metrics = policy.NewMetrics()
	}
	a.eval = policy.NewEvaluator(policy.Config{Logger: l, Metrics: a.metrics})

	for _, dir := range v.GetStringSlice(cfgPolicyDir) {
		policies, err := loadPolicyDir(dir)
		if err != nil {
			l.Fatal("could not load policies", zap.String("dir", dir), zap.Error(err))
		}
		a.policies = append(a.policies, policies...)
	}
	l.Info("policies loaded", zap.Int("count", len(a.policies)))

	if path := v.GetString(cfgTrustPolicy); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			l.Fatal("could not read trust policy", zap.String("path", path), zap.Error(err))
		}
		a.trustPolicy, err = policy.Parse(data)
		if err != nil {
			l.Fatal("could not parse trust policy", zap.String("path", path), zap.Error(err))
		}
		a.targetAccount = v.GetString(cfgTargetAccount)
	}

	return a
}

// loadPolicyDir parses every .json document of a directory in name order.
func loadPolicyDir(dir string) ([]*policy.Policy, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	policies := make([]*policy.Policy, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		p, err := policy.Parse(data)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, nil
}

func (a *App) loadContext() *requestctx.RequestContext {
	path := a.cfg.GetString(cfgContextFile)
	if path == "" {
		a.log.Fatal("no request context given, use --" + cfgContextFile)
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		a.log.Fatal("could not read request context", zap.Error(err))
	}

	rc, err := requestctx.Deserialize(data)
	if err != nil {
		a.log.Fatal("could not parse request context", zap.Error(err))
	}
	return rc
}

// Run makes a single decision for the configured context and prints it to
// stdout.
func (a *App) Run() {
	rc := a.loadContext()

	var out interface{}
	switch {
	case a.trustPolicy != nil:
		res := a.eval.EvaluatePrincipal(policy.PrincipalParams{
			Context:         rc,
			TrustedPolicy:   a.trustPolicy,
			TargetAccountID: a.targetAccount,
		})
		out = principalDecision{Effect: res.Effect, CheckAction: res.CheckAction}
	case a.cfg.GetBool(cfgLegacyVerdict):
		out = decision{Verdict: a.eval.EvaluateAllPoliciesLegacy(rc, a.policies)}
	default:
		res := a.eval.EvaluateAllPolicies(rc, a.policies)
		out = decision{Verdict: res.Verdict, Implicit: res.Implicit}
	}

	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(out); err != nil {
		a.log.Fatal("could not encode decision", zap.Error(err))
	}
}
