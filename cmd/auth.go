package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, false)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, true)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.svc.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		u, err := d.requireLogin(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (id %d)\n", u.Username, u.ID)
		if s := d.client.Session(); s != nil && !s.Expiry().IsZero() {
			fmt.Fprintf(out, "session expires %s\n", s.Expiry().Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringP("username", "u", "", "Account username (prompted when empty)")
		c.Flags().String("password", "", "Account password (read from stdin when empty)")
	}
}

// authenticate signs in, registering first when register is set.
func authenticate(cmd *cobra.Command, register bool) error {
	d, err := openDeps(cmd, false)
	if err != nil {
		return err
	}
	defer d.Close()

	in := bufio.NewReader(cmd.InOrStdin())
	username, _ := cmd.Flags().GetString("username")
	if username == "" {
		if username, err = prompt(in, cmd.ErrOrStderr(), "Username: "); err != nil {
			return err
		}
	}
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		if password, err = prompt(in, cmd.ErrOrStderr(), "Password: "); err != nil {
			return err
		}
	}
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}

	ctx := cmd.Context()
	if register {
		if _, err := d.svc.Register(ctx, username, password); err != nil {
			return fmt.Errorf("register: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered %s.\n", username)
	}
	if err := d.svc.Login(ctx, username, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", username)
	return nil
}

// prompt writes label to out and reads one trimmed line from in.
func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
