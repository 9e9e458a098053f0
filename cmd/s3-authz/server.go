package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/calaveras-io/s3authz/policy"
	"github.com/calaveras-io/s3authz/requestctx"
)

const defaultShutdownTimeout = 15 * time.Second

// handleAuthorize decides one request context posted as a serialized
// record.
func (a *App) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rc, err := requestctx.Deserialize(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := a.eval.EvaluateAllPolicies(rc, a.policies)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(decision{
		Verdict:  res.Verdict,
		Implicit: res.Implicit,
	}); err != nil {
		a.log.Warn("could not write decision", zap.Error(err))
	}
}

func (a *App) handlePrincipal(w http.ResponseWriter, r *http.Request) {
	if a.trustPolicy == nil {
		http.Error(w, "no trust policy configured", http.StatusNotFound)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rc, err := requestctx.Deserialize(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := a.eval.EvaluatePrincipal(policy.PrincipalParams{
		Context:         rc,
		TrustedPolicy:   a.trustPolicy,
		TargetAccountID: a.targetAccount,
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(principalDecision{
		Effect:      res.Effect,
		CheckAction: res.CheckAction,
	}); err != nil {
		a.log.Warn("could not write decision", zap.Error(err))
	}
}

func attachHealthy(r *mux.Router) {
	r.HandleFunc("/-/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintln(w, "ready")
	})

	r.HandleFunc("/-/healthy", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintln(w, "healthy")
	})
}

func (a *App) attachMetrics(r *mux.Router) {
	if a.metrics == nil {
		return
	}

	prometheus.MustRegister(a.metrics)
	r.Handle("/metrics", promhttp.Handler())
}

func attachProfiler(r *mux.Router) {
	r.HandleFunc("/debug/pprof/", pprof.Index)
	r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	r.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

// Serve runs the HTTP authorizer until the process is signalled.
func (a *App) Serve() {
	r := mux.NewRouter()
	r.HandleFunc("/authorize", a.handleAuthorize).Methods(http.MethodPost)
	r.HandleFunc("/authorize/principal", a.handlePrincipal).Methods(http.MethodPost)

	attachHealthy(r)
	a.attachMetrics(r)
	if a.cfg.GetBool(cfgEnableProfiler) {
		attachProfiler(r)
	}

	srv := &http.Server{
		Addr:    a.cfg.GetString(cfgListenAddress),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		a.log.Info("starting authorizer", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	a.log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("shutdown failed", zap.Error(err))
	}
}
