package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"highlighter/internal/catalog"
	"highlighter/internal/config"
	"highlighter/internal/library"
)

func newClipCommand(ctx *commandContext) *cobra.Command {
	clipCmd := &cobra.Command{
		Use:   "clip",
		Short: "Manage catalogued clips",
	}

	clipCmd.AddCommand(newClipAddCommand(ctx))
	clipCmd.AddCommand(newClipListCommand(ctx))
	clipCmd.AddCommand(newClipShowCommand(ctx))
	clipCmd.AddCommand(newClipTrimCommand(ctx))
	clipCmd.AddCommand(newClipResetCommand(ctx))
	clipCmd.AddCommand(newClipReprobeCommand(ctx))
	clipCmd.AddCommand(newClipVerifyCommand(ctx))
	clipCmd.AddCommand(newClipRemoveCommand(ctx))
	clipCmd.AddCommand(newClipPruneCommand(ctx))

	return clipCmd
}

func newClipAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Catalogue source files and build their scrubbing strips",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqCtx := requestContext(cmd)
			out := cmd.OutOrStdout()
			return ctx.withManager(func(mgr *library.Manager) error {
				var failed int
				for _, arg := range args {
					path, err := config.ExpandPath(arg)
					if err != nil {
						return err
					}
					rec, err := mgr.Import(reqCtx, path)
					switch {
					case errors.Is(err, catalog.ErrDuplicate) && rec != nil:
						fmt.Fprintf(out, "Skipped %s: already catalogued as clip %d\n", path, rec.ID)
					case err != nil && rec == nil:
						return err
					case err != nil:
						failed++
						fmt.Fprintf(out, "Added clip %d: %s (failed: %v)\n", rec.ID, rec.Title, err)
					default:
						fmt.Fprintf(out, "Added clip %d: %s (%s)\n", rec.ID, rec.Title, rec.Status())
					}
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d clips failed to initialize", failed, len(args))
				}
				return nil
			})
		},
	}
}

func newClipListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogued clips",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(mgr *library.Manager) error {
				records, err := mgr.Store().List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, newClipViews(records))
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No clips catalogued")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderClipList(records))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newClipShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseClipID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(mgr *library.Manager) error {
				rec, err := mgr.Store().MustGet(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printRecord(cmd, rec, jsonOut)
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newClipTrimCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "trim <id> <start-seconds> <end-seconds>",
		Short: "Set the seconds trimmed from the start and end of a clip",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseClipID(args[0])
			if err != nil {
				return err
			}
			start, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid start trim %q", args[1])
			}
			end, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid end trim %q", args[2])
			}
			return ctx.withManager(func(mgr *library.Manager) error {
				rec, err := mgr.Trim(requestContext(cmd), id, start, end)
				if err != nil {
					return err
				}
				return printRecord(cmd, rec, jsonOut)
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newClipResetCommand(ctx *commandContext) *cobra.Command {
	var preview bool
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "reset <id>",
		Short: "Re-check a clip and rebuild its decoders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseClipID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(mgr *library.Manager) error {
				rec, err := mgr.Reset(requestContext(cmd), id, preview)
				if err != nil {
					return err
				}
				return printRecord(cmd, rec, jsonOut)
			})
		},
	}
	cmd.Flags().BoolVar(&preview, "preview", false, "Build decoders at preview resolution")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newClipReprobeCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "reprobe <id>",
		Short: "Probe a clip's duration again and rebuild its strip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseClipID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(mgr *library.Manager) error {
				rec, err := mgr.Reprobe(requestContext(cmd), id)
				if err != nil {
					return err
				}
				return printRecord(cmd, rec, jsonOut)
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newClipVerifyCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "verify [id]",
		Short: "Re-check whether source files are still available",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqCtx := requestContext(cmd)
			return ctx.withManager(func(mgr *library.Manager) error {
				if len(args) == 1 {
					id, err := parseClipID(args[0])
					if err != nil {
						return err
					}
					rec, err := mgr.Verify(reqCtx, id)
					if err != nil {
						return err
					}
					return printRecord(cmd, rec, jsonOut)
				}
				records, verifyErr := mgr.VerifyAll(reqCtx)
				if jsonOut {
					if err := writeJSON(cmd, newClipViews(records)); err != nil {
						return err
					}
					return verifyErr
				}
				missing := 0
				for _, rec := range records {
					if rec.Deleted {
						missing++
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Verified %d clips: %d available, %d missing\n",
					len(records), len(records)-missing, missing)
				return verifyErr
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newClipRemoveCommand(ctx *commandContext) *cobra.Command {
	var purge bool
	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a clip from the catalog (the source file is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseClipID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(func(mgr *library.Manager) error {
				rec, err := mgr.Remove(requestContext(cmd), id, purge)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed clip %d: %s\n", rec.ID, rec.Title)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&purge, "purge-strip", false, "Also delete the clip's scrubbing strip")
	return cmd
}

func newClipPruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete scrubbing strips no catalogued clip refers to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(mgr *library.Manager) error {
				result, err := mgr.PruneStrips(requestContext(cmd))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Removed %d files (%s)\n", len(result.Removed), humanize.Bytes(uint64(result.Bytes)))
				for _, failure := range result.Errors {
					fmt.Fprintf(out, "  failed %s: %v\n", failure.Path, failure.Err)
				}
				if len(result.Errors) > 0 {
					return fmt.Errorf("%d files could not be removed", len(result.Errors))
				}
				return nil
			})
		},
	}
}

func printRecord(cmd *cobra.Command, rec *catalog.Record, jsonOut bool) error {
	if jsonOut {
		return writeJSON(cmd, newClipView(rec))
	}
	printClipDetail(cmd.OutOrStdout(), rec)
	return nil
}
