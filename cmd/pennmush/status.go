// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// ProbeStatus is the result of one health probe.
type ProbeStatus struct {
	Probe string `json:"probe"`
	OK    bool   `json:"ok"`
	Body  string `json:"body,omitempty"`
	Error string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
	timeout    time.Duration
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Probe a running game's health endpoints",
		Long: `Query the liveness and readiness endpoints served on the metrics
address of a running "pennmush run".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", 2*time.Second, "timeout for each probe")
	cmd.Flags().String("metrics-addr", "", "metrics/health HTTP address (default: from the configuration)")

	return cmd
}

func runStatus(cmd *cobra.Command, sc *statusConfig) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.MetricsAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("a metrics address is required (metrics_addr or --metrics-addr)")
	}

	client := &http.Client{Timeout: sc.timeout}
	base := cfg.MetricsAddr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	statuses := []ProbeStatus{
		queryProbe(client, "liveness", base+"/healthz/liveness"),
		queryProbe(client, "readiness", base+"/healthz/readiness"),
	}

	if sc.jsonOutput {
		data, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return oops.Code("STATUS_FORMAT_FAILED").Wrap(err)
		}
		cmd.Println(string(data))
	} else {
		cmd.Print(formatStatusTable(statuses))
	}

	for _, s := range statuses {
		if !s.OK {
			return oops.Code("NOT_READY").With("probe", s.Probe).Errorf("%s probe failed", s.Probe)
		}
	}
	return nil
}

// queryProbe fetches one health endpoint.
func queryProbe(client *http.Client, probe, url string) ProbeStatus {
	status := ProbeStatus{Probe: probe}
	resp, err := client.Get(url) //nolint:noctx // client timeout bounds the request
	if err != nil {
		status.Error = fmt.Sprintf("failed to connect: %v", err)
		return status
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		status.Error = fmt.Sprintf("failed to read response: %v", err)
		return status
	}
	status.Body = strings.TrimSpace(string(body))
	status.OK = resp.StatusCode == http.StatusOK
	if !status.OK {
		status.Error = resp.Status
	}
	return status
}

// formatStatusTable formats the probes as a human-readable table.
func formatStatusTable(statuses []ProbeStatus) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "PROBE\tSTATUS\tDETAIL")
	_, _ = fmt.Fprintln(w, "-----\t------\t------")
	for _, s := range statuses {
		state, detail := "ok", s.Body
		if !s.OK {
			state, detail = "failing", s.Error
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", s.Probe, state, detail)
	}

	_ = w.Flush()
	return b.String()
}
