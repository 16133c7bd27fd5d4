package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"lostfound/internal/imaging"
	"lostfound/internal/model"
)

func (a *app) runItems(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("items", flag.ContinueOnError)
	var (
		status   = fs.String("status", "", "")
		category = fs.String("category", "", "")
		search   = fs.String("query", "", "")
		page     = fs.Int("page", 1, "")
		size     = fs.Int("size", 20, "")
		sort     = fs.String("sort", model.SortNewest, "")
	)
	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: lostfound items [flags]

Flags:
  -status <LOST|FOUND>   filter by status
  -category <name>       filter by category
  -query <text>          search title, description and location
  -page <n>              page number (default: 1)
  -size <n>              page size (default: 20)
  -sort <newest|oldest>  report-date ordering (default: newest)
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	f := model.ItemFilter{
		Status:   strings.ToUpper(*status),
		Category: *category,
		Query:    *search,
		Page:     *page,
		PageSize: *size,
		Sort:     *sort,
	}
	if f.Status != "" && !model.ValidStatus(f.Status) {
		return fmt.Errorf("invalid status %q (want LOST or FOUND)", *status)
	}

	result, err := a.svc.ListItems(ctx, f)
	if err != nil {
		return err
	}
	printItems(result)
	return nil
}

func (a *app) runItem(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: lostfound item <id>")
	}
	item, err := a.svc.GetItem(ctx, args[0])
	if err != nil {
		return err
	}
	printItem(item)
	return nil
}

func (a *app) runReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	var (
		title    = fs.String("title", "", "")
		desc     = fs.String("desc", "", "")
		category = fs.String("category", "", "")
		status   = fs.String("status", model.StatusLost, "")
		location = fs.String("location", "", "")
		date     = fs.String("date", "", "")
		contact  = fs.String("contact", "", "")
		image    = fs.String("image", "", "")
	)
	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: lostfound report -title <text> [flags]

Flags:
  -title <text>          item title (required)
  -desc <text>           description
  -category <name>       category (default: Others)
  -status <LOST|FOUND>   report status (default: LOST)
  -location <text>       where it was lost or found
  -date <when>           date lost/found, YYYY-MM-DD or RFC 3339 (default: today)
  -contact <text>        contact details (default: account email)
  -image <path>          photo to attach (JPEG or PNG)
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess := a.session.Load(ctx)
	if sess == nil {
		return fmt.Errorf("not signed in (run 'lostfound login' first)")
	}

	draft := model.ItemDraft{
		Title:       strings.TrimSpace(*title),
		Description: strings.TrimSpace(*desc),
		Category:    *category,
		Status:      strings.ToUpper(*status),
		Location:    *location,
		Date:        *date,
		Contact:     *contact,
		ReporterID:  sess.UserID,
	}
	if err := validateDraft(&draft); err != nil {
		return err
	}
	if draft.Contact == "" {
		draft.Contact = sess.Email
	}

	if *image != "" {
		url, err := a.uploadPhoto(ctx, *image)
		if err != nil {
			return err
		}
		draft.ImageURL = url
	}

	item, err := a.svc.CreateItem(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Printf("Reported %q (%s)\n", item.Title, item.ID)
	return nil
}

func (a *app) runUpdate(ctx context.Context, args []string) error {
	// Flag parsing stops at the first positional argument, so the id
	// comes off the front before the flag set sees anything.
	var id string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		id, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	var (
		title    = fs.String("title", "", "")
		desc     = fs.String("desc", "", "")
		category = fs.String("category", "", "")
		location = fs.String("location", "", "")
		date     = fs.String("date", "", "")
		contact  = fs.String("contact", "", "")
		image    = fs.String("image", "", "")
	)
	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: lostfound update <id> [flags]

Only the given flags change; everything else is left as is.

Flags:
  -title <text>      new title
  -desc <text>       new description
  -category <name>   new category
  -location <text>   new location
  -date <when>       new date lost/found
  -contact <text>    new contact details
  -image <path>      new photo (JPEG or PNG)
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("usage: lostfound update <id> [flags]")
	}

	var patch model.ItemPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			patch.Title = title
		case "desc":
			patch.Description = desc
		case "category":
			patch.Category = category
		case "location":
			patch.Location = location
		case "date":
			patch.Date = date
		case "contact":
			patch.Contact = contact
		}
	})
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if patch.Category != nil && !model.ValidCategory(*patch.Category) {
		return fmt.Errorf("unknown category %q (known: %s)", *patch.Category, strings.Join(model.Categories, ", "))
	}
	if patch.Date != nil {
		normalized, err := normalizeDate(*patch.Date)
		if err != nil {
			return err
		}
		patch.Date = &normalized
	}

	if *image != "" {
		url, err := a.uploadPhoto(ctx, *image)
		if err != nil {
			return err
		}
		patch.ImageURL = &url
	}

	item, err := a.svc.UpdateItem(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %q (%s)\n", item.Title, item.ID)
	return nil
}

func (a *app) runMark(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: lostfound mark <id> <LOST|FOUND>")
	}
	status := strings.ToUpper(args[1])
	if !model.ValidStatus(status) {
		return fmt.Errorf("invalid status %q (want LOST or FOUND)", args[1])
	}
	item, err := a.svc.UpdateStatus(ctx, args[0], status)
	if err != nil {
		return err
	}
	fmt.Printf("Marked %q as %s\n", item.Title, item.Status)
	return nil
}

func (a *app) runFlag(ctx context.Context, args []string) error {
	var id string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		id, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("flag", flag.ContinueOnError)
	reason := fs.String("reason", "", "")
	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: lostfound flag <id> -reason <text>

Flags:
  -reason <text>   why the item needs moderator review (required)
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("usage: lostfound flag <id> -reason <text>")
	}
	if strings.TrimSpace(*reason) == "" {
		return fmt.Errorf("a reason is required when flagging")
	}

	item, err := a.svc.FlagItem(ctx, id, strings.TrimSpace(*reason))
	if err != nil {
		return err
	}
	fmt.Printf("Flagged %q for review\n", item.Title)
	return nil
}

func (a *app) runDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: lostfound delete <id>")
	}
	if err := a.svc.DeleteItem(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted item %s\n", args[0])
	return nil
}

// validateDraft checks a new report before any network I/O.
func validateDraft(draft *model.ItemDraft) error {
	if draft.Title == "" {
		return fmt.Errorf("a title is required")
	}
	if !model.ValidStatus(draft.Status) {
		return fmt.Errorf("invalid status %q (want LOST or FOUND)", draft.Status)
	}
	if draft.Category == "" {
		draft.Category = model.CategoryFallback
	} else if !model.ValidCategory(draft.Category) {
		return fmt.Errorf("unknown category %q (known: %s)", draft.Category, strings.Join(model.Categories, ", "))
	}
	if draft.Date == "" {
		draft.Date = time.Now().UTC().Format(time.RFC3339)
	} else {
		normalized, err := normalizeDate(draft.Date)
		if err != nil {
			return err
		}
		draft.Date = normalized
	}
	return nil
}

// normalizeDate accepts YYYY-MM-DD or RFC 3339 and returns RFC 3339.
func normalizeDate(s string) (string, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}
	return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC 3339)", s)
}

// uploadPhoto prepares a local image file and pushes it to the backend.
func (a *app) uploadPhoto(ctx context.Context, path string) (string, error) {
	if a.rest == nil {
		return "", fmt.Errorf("image upload needs a backend (not available with -mock)")
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	photo, err := imaging.Prepare(f)
	if err != nil {
		return "", fmt.Errorf("preparing image: %w", err)
	}

	name := strings.TrimSuffix(strings.ToLower(trimPath(path)), ".png") + ".jpg"
	return a.rest.UploadImage(ctx, name, photo.Data)
}

func trimPath(path string) string {
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func printItems(page model.ItemPage) {
	if page.Total == 0 {
		fmt.Println("No items found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tCATEGORY\tLOCATION\tREPORTED")
	for _, item := range page.Items {
		flags := ""
		if item.Flagged {
			flags = " [flagged]"
		}
		fmt.Fprintf(w, "%s\t%s\t%s%s\t%s\t%s\t%s\n",
			item.ID, item.Status, item.Title, flags, item.Category,
			item.Location, item.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()

	if page.PageSize > 0 && page.Total > page.PageSize {
		pages := (page.Total + page.PageSize - 1) / page.PageSize
		fmt.Printf("\nPage %d of %d (%d items)\n", page.Page, pages, page.Total)
	}
}

func printItem(item *model.Item) {
	var b bytes.Buffer
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", item.ID)
	fmt.Fprintf(w, "Title:\t%s\n", item.Title)
	fmt.Fprintf(w, "Status:\t%s\n", item.Status)
	fmt.Fprintf(w, "Category:\t%s\n", item.Category)
	if item.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", item.Description)
	}
	if item.Location != "" {
		fmt.Fprintf(w, "Location:\t%s\n", item.Location)
	}
	if item.Date != "" {
		fmt.Fprintf(w, "Date:\t%s\n", item.Date)
	}
	if item.Contact != "" {
		fmt.Fprintf(w, "Contact:\t%s\n", item.Contact)
	}
	fmt.Fprintf(w, "Image:\t%s\n", item.ImageURL)
	if item.Flagged {
		fmt.Fprintf(w, "Flagged:\tyes (%s)\n", item.FlagReason)
	}
	fmt.Fprintf(w, "Reported:\t%s\n", item.CreatedAt.Format(time.RFC3339))
	w.Flush()
	os.Stdout.Write(b.Bytes())
}
