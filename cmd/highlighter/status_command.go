package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"highlighter/internal/catalog"
	"highlighter/internal/deps"
	"highlighter/internal/library"
	"highlighter/internal/preflight"
)

type statusReport struct {
	ConfigPath  string             `json:"config_path"`
	Ready       bool               `json:"ready"`
	Directories []preflight.Result `json:"directories"`
	Tools       []deps.Status      `json:"tools"`
	Clips       catalog.Counts     `json:"clips"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check directories, external tools and catalog health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			checks := preflight.RunAll(cmd.Context(), cfg)
			report := statusReport{
				ConfigPath:  ctx.configPath,
				Ready:       checks.Ready(),
				Directories: checks.Directories,
				Tools:       checks.Tools,
			}
			if err := ctx.withManager(func(mgr *library.Manager) error {
				counts, err := mgr.Store().Stats(cmd.Context())
				report.Clips = counts
				return err
			}); err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, report)
			}
			renderStatus(cmd, report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func renderStatus(cmd *cobra.Command, report statusReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintln(out, renderSectionHeader("Configuration", colorize))
	fmt.Fprintln(out, renderStatusLine("Config file", statusInfo, report.ConfigPath, colorize))
	for _, dir := range report.Directories {
		kind := statusOK
		if !dir.Passed {
			kind = statusError
		}
		fmt.Fprintln(out, renderStatusLine(dir.Name, kind, dir.Detail, colorize))
	}

	fmt.Fprintln(out, renderSectionHeader("Tools", colorize))
	for _, tool := range report.Tools {
		switch {
		case tool.Available:
			msg := tool.Command
			if tool.Version != "" {
				msg = tool.Version
			}
			fmt.Fprintln(out, renderStatusLine(tool.Name, statusOK, msg, colorize))
		case tool.Optional:
			fmt.Fprintln(out, renderStatusLine(tool.Name, statusWarn, tool.Detail, colorize))
		default:
			fmt.Fprintln(out, renderStatusLine(tool.Name, statusError, tool.Detail, colorize))
		}
	}

	fmt.Fprintln(out, renderSectionHeader("Catalog", colorize))
	c := report.Clips
	fmt.Fprintln(out, renderTable(
		[]string{"Total", "Ready", "Pending", "Failed", "Deleted"},
		[][]string{{
			strconv.Itoa(c.Total),
			strconv.Itoa(c.Ready),
			strconv.Itoa(c.Pending),
			strconv.Itoa(c.Failed),
			strconv.Itoa(c.Deleted),
		}},
		0, 1, 2, 3, 4,
	))

	if report.Ready {
		fmt.Fprintln(out, renderStatusLine("Overall", statusOK, "ready", colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Overall", statusError, "not ready", colorize))
	}
}
