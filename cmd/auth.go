package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/moviemanager/tmdb"
)

var (
	loginUsername string
	loginPassword string
	loginWeb      bool
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to TMDB and store the session",
	Long: `Log in to your TMDB account.

With --username and --password (or auth.username/auth.password in the config)
the request token is approved directly. With --web the approval page is opened
in your browser instead and the session is created once you confirm.`,
	RunE: runLogin,
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Delete the TMDB session",
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "TMDB username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "TMDB password")
	loginCmd.Flags().BoolVar(&loginWeb, "web", false, "approve the login in a browser")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if client.Credentials().HasSession() {
		fmt.Println("Already logged in. Run 'moviemanager logout' first to switch accounts.")
		return nil
	}

	auth := client.Auth()
	reader := bufio.NewReader(os.Stdin)

	username := firstNonEmpty(loginUsername, cfg.Auth.Username)
	if loginWeb {
		if err := webLogin(ctx, auth, reader); err != nil {
			return err
		}
	} else {
		var err error
		if username == "" {
			if username, err = prompt(reader, "Username: "); err != nil {
				return err
			}
		}
		password := firstNonEmpty(loginPassword, cfg.Auth.Password)
		if password == "" {
			if password, err = prompt(reader, "Password: "); err != nil {
				return err
			}
		}

		logger.Info().Str("username", username).Msg("Logging in to TMDB")
		if err := auth.Login(ctx, username, password); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
	}

	account, err := auth.LoadAccount(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Could not load account details")
	} else if username == "" {
		username = account.Username
	}

	if err := session.Save(client.Credentials(), username); err != nil {
		return err
	}

	if username != "" {
		fmt.Printf("✓ Logged in as %s\n", username)
	} else {
		fmt.Println("✓ Logged in")
	}
	return nil
}

func webLogin(ctx context.Context, auth *tmdb.Authenticator, reader *bufio.Reader) error {
	if err := auth.RequestToken(ctx); err != nil {
		return fmt.Errorf("failed to get request token: %w", err)
	}

	target, err := auth.WebAuthURL()
	if err != nil {
		return err
	}

	fmt.Printf("Approve the request in your browser:\n\n  %s\n\n", target)
	if _, err := prompt(reader, "Press Enter once approved... "); err != nil {
		return err
	}

	if err := auth.CreateSession(ctx); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	err := client.Auth().Logout(ctx)
	if delErr := session.Delete(); delErr != nil {
		return delErr
	}

	switch {
	case errors.Is(err, tmdb.ErrNoSession):
		fmt.Println("Not logged in.")
	case err != nil:
		logger.Warn().Err(err).Msg("Remote logout failed")
		fmt.Printf("✓ Logged out locally (%s)\n", tmdb.Message(err))
	default:
		fmt.Println("✓ Logged out")
	}
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
