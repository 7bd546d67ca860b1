package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	if a.userEmail == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userEmail)
}

// Root restores any persisted session and hands control to the REPL. It
// blocks until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to Shopkeeper CLI (type 'help' for commands)")

	a.restoreSession(ctx)
	if a.isLoggedIn() {
		printlnFn(fmt.Sprintf("Resumed session for %s", a.userEmail))
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
