package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) Roles(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	roles, err := a.client.Roles(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Roles: %s\n", strings.Join(roles, ", "))
	return nil
}

// SetRoles replaces the whole role set of the account.
func (a *App) SetRoles(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	roles, err := a.client.SetRoles(ctx, args[0], args[1:])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Roles: %s\n", strings.Join(roles, ", "))
	return nil
}

func (a *App) Deactivate(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.client.Deactivate(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account deactivated")
	return nil
}

func (a *App) Restore(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.client.Restore(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account restored")
	return nil
}

// DeleteAccount asks for confirmation: the account cannot be restored.
func (a *App) DeleteAccount(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	answer, err := getSimpleText(a.reader, "Delete permanently? (yes/no)", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	if err := a.client.DeleteAccount(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account deleted")
	return nil
}
