package cli

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dmitrijs2005/librarian/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// SignUp prompts for name, email, password and optional roles and creates
// the account. The new session is remembered.
func (a *App) SignUp(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	rolesLine, err := getSimpleText(a.reader, "Roles (space separated, empty for user)", a.out)
	if err != nil {
		return err
	}

	id, err := a.sessions.SignUp(ctx, name, email, password, strings.Fields(rolesLine))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account created: %s\n", id)
	return nil
}

// Login prompts for credentials and remembers the session on success.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.sessions.Login(ctx, email, password); err != nil {
		return err
	}

	log.Printf("Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	return a.sessions.Logout(ctx)
}

func (a *App) WhoAmI(ctx context.Context) error {
	acc, err := a.client.WhoAmI(ctx)
	if err != nil {
		return err
	}
	printAccount(a.out, acc)
	return nil
}

// ChangePassword asks for the current and the new password. Other sessions
// of the account stop working; this one continues on a fresh token pair.
func (a *App) ChangePassword(ctx context.Context) error {
	oldPassword, err := getPassword(a.reader, "Current password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPassword)

	newPassword, err := getPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	if err := a.sessions.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed")
	return nil
}

// ForgotPassword requests a reset token. The server answers the same way
// whether or not the email is known.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.client.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "If the account exists, a reset token has been sent")
	return nil
}

func (a *App) ResetPassword(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter reset token", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.ResetPassword(ctx, token, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password reset, please log in")
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	if err := a.client.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Server is up")
	return nil
}
