package auth

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// Flow runs the interactive email/password login.
type Flow struct {
	client *Client
	logger *slog.Logger
}

// NewFlow creates a login flow.
func NewFlow(client *Client, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{client: client, logger: logger}
}

// Run prompts for credentials and authenticates. The password prompt is
// hidden.
func (f *Flow) Run(ctx context.Context) (*Session, error) {
	fmt.Println()
	fmt.Println("Dropbinge Login")
	fmt.Println("━━━━━━━━━━━━━━━")

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read email: %w", err)
	}
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	password := string(passwordBytes)
	fmt.Println() // Add newline after hidden input

	fmt.Println()
	fmt.Println("Authenticating...")

	session, err := f.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	f.logger.Info("logged in", "user", session.User.Email)
	fmt.Println()
	fmt.Println("Login successful!")

	return session, nil
}
