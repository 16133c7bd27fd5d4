package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"lostfound/internal/model"
)

const adminUsage = `Usage: lostfound admin <command> [args]

Moderation commands. Requires an admin session.

Commands:
  flagged             list items awaiting review
  flag <id> -reason   flag an item (same as top-level 'flag')
  approve <id>        clear an item's flag, keeping the listing
  reject <id>         remove a flagged item entirely
`

func (a *app) runAdmin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stdout, adminUsage)
		return fmt.Errorf("missing admin command")
	}

	sess := a.session.Load(ctx)
	if !sess.IsAdmin() {
		return fmt.Errorf("admin commands need an admin session")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "flagged":
		return a.runAdminFlagged(ctx, rest)
	case "flag":
		return a.runFlag(ctx, rest)
	case "approve":
		if len(rest) != 1 {
			return fmt.Errorf("usage: lostfound admin approve <id>")
		}
		item, err := a.svc.ApproveItem(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Printf("Approved %q, flag cleared\n", item.Title)
		return nil
	case "reject":
		if len(rest) != 1 {
			return fmt.Errorf("usage: lostfound admin reject <id>")
		}
		if err := a.svc.RejectItem(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Printf("Rejected and removed item %s\n", rest[0])
		return nil
	default:
		fmt.Fprint(os.Stdout, adminUsage)
		return fmt.Errorf("unknown admin command: %s", cmd)
	}
}

func (a *app) runAdminFlagged(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("flagged", flag.ContinueOnError)
	page := fs.Int("page", 1, "")
	size := fs.Int("size", 20, "")
	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: lostfound admin flagged [flags]

Flags:
  -page <n>   page number (default: 1)
  -size <n>   page size (default: 20)
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	flagged := true
	result, err := a.svc.ListItems(ctx, model.ItemFilter{
		Flagged:  &flagged,
		Page:     *page,
		PageSize: *size,
	})
	if err != nil {
		return err
	}

	if result.Total == 0 {
		fmt.Println("No items awaiting review.")
		return nil
	}
	for _, item := range result.Items {
		fmt.Printf("%s  %-8s %s\n    reason: %s\n", item.ID, item.Status, item.Title, item.FlagReason)
	}
	return nil
}
