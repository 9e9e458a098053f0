package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/calaveras-io/s3authz/misc"
)

const ( // settings
	// Logger:
	cfgLoggerLevel              = "logger.level"
	cfgLoggerFormat             = "logger.format"
	cfgLoggerTraceLevel         = "logger.trace_level"
	cfgLoggerNoDisclaimer       = "logger.no_disclaimer"
	cfgLoggerSamplingInitial    = "logger.sampling.initial"
	cfgLoggerSamplingThereafter = "logger.sampling.thereafter"

	// Evaluation inputs
	cfgContextFile   = "context"
	cfgPolicyDir     = "policy_dir"
	cfgTrustPolicy   = "trust_policy"
	cfgTargetAccount = "account"
	cfgLegacyVerdict = "legacy"

	// Metrics / Profiler / Web
	cfgEnableMetrics  = "metrics"
	cfgEnableProfiler = "pprof"
	cfgListenAddress  = "listen_address"
	cfgServe          = "serve"

	// Application
	cfgApplicationName    = "app.name"
	cfgApplicationVersion = "app.version"
)

func newSettings() *viper.Viper {
	v := viper.New()

	v.AutomaticEnv()
	v.SetEnvPrefix(misc.Prefix)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// flags setup:
	flags := pflag.NewFlagSet("commandline", pflag.ExitOnError)
	flags.SortFlags = false

	flags.Bool(cfgEnableProfiler, false, "enable pprof")
	flags.Bool(cfgEnableMetrics, false, "enable prometheus")

	help := flags.BoolP("help", "h", false, "show help")
	version := flags.BoolP("version", "v", false, "show version")

	flags.StringP(cfgContextFile, "c", "", "request context record, \"-\" for stdin")
	flags.StringArrayP(cfgPolicyDir, "p", nil, "directory with policy documents")
	flags.String(cfgTrustPolicy, "", "trust policy for principal evaluation")
	flags.String(cfgTargetAccount, "", "target account id for principal evaluation")
	flags.Bool(cfgLegacyVerdict, false, "fold tag-gated verdicts into Deny")

	flags.Bool(cfgServe, false, "run the HTTP authorizer instead of a one-shot decision")
	flags.String(cfgListenAddress, "0.0.0.0:8080", "authorizer listen address")

	config := flags.String("config", "", "config file path (yaml)")

	// set prefers:
	v.Set(cfgApplicationName, misc.ApplicationName)
	v.Set(cfgApplicationVersion, misc.Version)

	// set defaults:

	// logger:
	v.SetDefault(cfgLoggerLevel, "info")
	v.SetDefault(cfgLoggerFormat, "console")
	v.SetDefault(cfgLoggerTraceLevel, "fatal")
	v.SetDefault(cfgLoggerNoDisclaimer, true)
	v.SetDefault(cfgLoggerSamplingInitial, 1000)
	v.SetDefault(cfgLoggerSamplingThereafter, 1000)

	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	if err := flags.Parse(os.Args); err != nil {
		panic(err)
	}

	if config != nil && *config != "" {
		v.SetConfigFile(*config)
		if err := v.ReadInConfig(); err != nil {
			panic(err)
		}
	}

	switch {
	case help != nil && *help:
		fmt.Printf("%s %s\n", misc.ApplicationName, misc.Version)
		flags.PrintDefaults()
		os.Exit(0)
	case version != nil && *version:
		fmt.Printf("%s %s\n", misc.ApplicationName, misc.Version)
		os.Exit(0)
	}

	return v
}
