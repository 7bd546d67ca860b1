package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for account details and attempts to create a new
// account via the AuthService. A successful register opens a session, same
// as login.
//
// The password byte slice is securely wiped before returning. Any I/O or
// service error is returned unchanged.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter display name", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.authService.Register(ctx, email, password, name)
	if err != nil {
		printlnFn("Registration failed:", err.Error())
		return err
	}

	a.userEmail = user.Email
	printlnFn(fmt.Sprintf("Welcome, %s!", user.Name))
	return nil
}

// Login prompts the user for credentials and authenticates against the
// server. On success the session record is persisted by the client, so the
// next run of the program resumes it without prompting.
//
// The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.authService.Login(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidCredentials):
			printlnFn("Invalid email or password.")
		case errors.Is(err, common.ErrUnavailable):
			printlnFn("Server unavailable, try again later.")
		default:
			printlnFn("Login failed:", err.Error())
		}
		return err
	}

	a.userEmail = user.Email
	printlnFn(fmt.Sprintf("Logged in as %s", user.Email))
	return nil
}

// Logout revokes the refresh token server-side (best effort) and clears the
// local session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		if errors.Is(err, common.ErrNoSession) {
			printlnFn("Not logged in.")
		} else {
			printlnFn("Logout failed:", err.Error())
		}
		return err
	}
	a.userEmail = ""
	printlnFn("Logged out.")
	return nil
}

// Status prints the stored session state, including the access token expiry
// when the token carries one.
func (a *App) Status(ctx context.Context) error {
	st, err := a.authService.Status(ctx)
	if err != nil {
		printlnFn("Status failed:", err.Error())
		return err
	}

	if !st.Authenticated {
		printlnFn("Not logged in.")
		return nil
	}

	printlnFn(fmt.Sprintf("Logged in as %s (%s)", st.User.Email, st.User.Name))
	if !st.AccessExpiry.IsZero() {
		printlnFn(fmt.Sprintf("Access token expires %s", st.AccessExpiry.Local().Format(time.RFC1123)))
	}
	return nil
}

// Ping checks backend liveness.
func (a *App) Ping(ctx context.Context) error {
	if err := a.authService.Ping(ctx); err != nil {
		printlnFn("Server unreachable:", err.Error())
		return err
	}
	printlnFn("Server is up.")
	return nil
}
