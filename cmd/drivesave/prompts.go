package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/drivesave/drivesave/internal/credstore"
	"github.com/drivesave/drivesave/internal/input"
)

// cliPrompter asks for credentials on the terminal when --cli disables the
// TUI form. The password read never echoes.
type cliPrompter struct {
	reader       *bufio.Reader
	readPassword func(int) ([]byte, error)
	passwordFd   int
}

func newCLIPrompter() *cliPrompter {
	return &cliPrompter{
		reader:       bufio.NewReader(os.Stdin),
		readPassword: term.ReadPassword,
		passwordFd:   int(os.Stdin.Fd()),
	}
}

func (p *cliPrompter) PromptCredential(ctx context.Context, host string) (credstore.Credential, error) {
	fmt.Printf("Credentials required for %s\n", host)

	var username string
	for {
		if err := ctx.Err(); err != nil {
			return credstore.Credential{}, input.ErrInputAborted
		}
		fmt.Print("Username: ")
		line, err := input.ReadLineWithContext(ctx, p.reader)
		if err != nil {
			return credstore.Credential{}, err
		}
		username = strings.TrimSpace(line)
		if username != "" {
			break
		}
		fmt.Println("Username cannot be empty.")
	}

	fmt.Print("Password: ")
	secret, err := input.ReadPasswordWithContext(ctx, p.readPassword, p.passwordFd)
	fmt.Println()
	if err != nil {
		return credstore.Credential{}, err
	}

	return credstore.Credential{Username: username, Secret: string(secret)}, nil
}
