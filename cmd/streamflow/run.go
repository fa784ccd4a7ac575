package main

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/spf13/cobra"

	"github.com/streamflow-go/engine/pkg/config"
	"github.com/streamflow-go/engine/pkg/log"
	"github.com/streamflow-go/engine/pkg/metrics"
	"github.com/streamflow-go/engine/pkg/workflow"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a workflow manifest to completion",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringP("file", "f", "", "workflow manifest YAML file (required)")
	runCmd.Flags().String("metrics-addr", "", "if set, serve Prometheus metrics and health endpoints on this address")
	_ = runCmd.MarkFlagRequired("file")
}

func runRun(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	manifest, err := config.Load(file)
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}

	g, err := buildGraph(manifest)
	if err != nil {
		return fmt.Errorf("building workflow graph: %w", err)
	}

	if metricsAddr != "" {
		go serveMetrics(metricsAddr)
	}

	ctx := cmd.Context()
	var wg sync.WaitGroup
	errs := make([]error, len(g.tasks))
	for i, task := range g.tasks {
		wg.Add(1)
		go func(i int, task *workflow.Task) {
			defer wg.Done()
			errs[i] = task.Run(ctx)
		}(i, task)
	}
	wg.Wait()
	g.undeployAll(ctx)

	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("task %s: %w", g.tasks[i].Name, err)
		}
	}

	log.Info("workflow run completed")
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/health", metrics.HealthHandler())
	mux.Handle("/ready", metrics.ReadyHandler())
	mux.Handle("/live", metrics.LivenessHandler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("metrics server error", err)
	}
}
