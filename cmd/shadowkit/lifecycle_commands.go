package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"shadowkit/internal/shadow"
)

type syncOutput struct {
	Operation string `json:"operation"`
	Project   string `json:"project"`
	shadow.SyncResult
}

func newLifecycleCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newRenameCommand(ctx),
		newMoveCommand(ctx),
		newDeleteCommand(ctx),
	}
}

func newRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <project> <tier> <old-base> <new-base>",
		Short: "Rename a shadow after its master was renamed",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := shadow.ParseTier(args[1])
			if err != nil {
				return err
			}
			return runSync(cmd, ctx, "rename", args[0], func(layout shadow.Layout) shadow.SyncResult {
				return layout.Extensions.RenameShadow(args[2], args[3], layout.ShadowsDir(tier))
			})
		},
	}
}

func newMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <project> <base> <from-tier> <to-tier>",
		Short: "Move a shadow to follow its master between tiers",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := shadow.ParseTier(args[2])
			if err != nil {
				return err
			}
			to, err := shadow.ParseTier(args[3])
			if err != nil {
				return err
			}
			return runSync(cmd, ctx, "move", args[0], func(layout shadow.Layout) shadow.SyncResult {
				return layout.Extensions.MoveShadow(args[1], layout.ShadowsDir(from), layout.ShadowsDir(to))
			})
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project> <tier> <base>",
		Short: "Delete a shadow after its master was deleted",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := shadow.ParseTier(args[1])
			if err != nil {
				return err
			}
			return runSync(cmd, ctx, "delete", args[0], func(layout shadow.Layout) shadow.SyncResult {
				return layout.Extensions.DeleteShadow(args[2], layout.ShadowsDir(tier))
			})
		},
	}
}

// runSync applies op under the project lock. A missing shadow is reported
// but is not an error: the master may never have had one.
func runSync(cmd *cobra.Command, ctx *commandContext, operation, project string, op func(shadow.Layout) shadow.SyncResult) error {
	layout, err := ctx.projectLayout(project)
	if err != nil {
		return err
	}

	var result shadow.SyncResult
	if err := ctx.withProjectLock(cmd.Context(), layout, func() error {
		result = op(layout)
		return nil
	}); err != nil {
		return err
	}

	if ctx.jsonOutput() {
		if err := writeJSON(cmd, syncOutput{Operation: operation, Project: layout.Root, SyncResult: result}); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		switch {
		case result.Success:
			fmt.Fprintf(out, "%s: shadow %s ok\n", layout.Name(), operation)
		case result.NotFound():
			fmt.Fprintf(out, "%s: no shadow to %s\n", layout.Name(), operation)
		}
	}

	if !result.Success && !result.NotFound() {
		return errors.New(operation + " shadow: " + result.Error)
	}
	return nil
}
