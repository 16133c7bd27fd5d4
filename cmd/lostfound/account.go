package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"lostfound/internal/model"
)

func (a *app) runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "")
	password := fs.String("password", "", "")
	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: lostfound login [-email <addr>] [-password <pw>]

Prompts for anything not given. The session is persisted locally and
reused by later commands until logout or token expiry.
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	addr := *email
	if addr == "" {
		fmt.Print("Email: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading email: %w", err)
		}
		addr = strings.TrimSpace(line)
	}

	pw := *password
	if pw == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		pw = string(raw)
	}

	sess, err := a.svc.Login(ctx, addr, pw)
	if err != nil {
		return err
	}
	if err := a.session.Save(ctx, sess); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	fmt.Printf("Signed in as %s (%s)\n", sess.Name, sess.Email)
	return nil
}

func (a *app) runLogout(ctx context.Context) error {
	if err := a.session.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	fmt.Println("Signed out.")
	return nil
}

func (a *app) runWhoami(ctx context.Context) error {
	sess := a.session.Load(ctx)
	if sess == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	role := ""
	if sess.IsAdmin() {
		role = " [admin]"
	}
	fmt.Printf("%s <%s>%s\n", sess.Name, sess.Email, role)
	return nil
}

func (a *app) runRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "")
	name := fs.String("name", "", "")
	password := fs.String("password", "", "")
	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: lostfound register -email <addr> -name <name> [-password <pw>]

Creates a regular account and signs in.
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" || *name == "" {
		return fmt.Errorf("usage: lostfound register -email <addr> -name <name>")
	}

	pw := *password
	if pw == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		pw = string(raw)
	}
	if len(pw) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	user, err := a.svc.Register(ctx, strings.TrimSpace(*email), strings.TrimSpace(*name), pw)
	if err != nil {
		return err
	}
	fmt.Printf("Account created for %s\n", user.Email)

	sess, err := a.svc.Login(ctx, user.Email, pw)
	if err != nil {
		return fmt.Errorf("account created but sign-in failed: %w", err)
	}
	if err := a.session.Save(ctx, sess); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	fmt.Printf("Signed in as %s (%s)\n", sess.Name, sess.Email)
	return nil
}

func (a *app) runMine(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mine", flag.ContinueOnError)
	page := fs.Int("page", 1, "")
	size := fs.Int("size", 20, "")
	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: lostfound mine [flags]

Lists your own item reports, newest first.

Flags:
  -page <n>   page number (default: 1)
  -size <n>   page size (default: 20)
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess := a.session.Load(ctx)
	if sess == nil {
		return fmt.Errorf("not signed in (run 'lostfound login' first)")
	}

	result, err := a.svc.ListItems(ctx, model.ItemFilter{
		ReporterID: sess.UserID,
		Page:       *page,
		PageSize:   *size,
	})
	if err != nil {
		return err
	}
	printItems(result)
	return nil
}
