package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-task-tracker/internal/services"
)

func newRegisterCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			avatar, _ := cmd.Flags().GetString("avatar")
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			user, err := deps.Sessions.Register(cmd.Context(), services.RegisterParams{
				Name:     name,
				Email:    email,
				Password: password,
				Avatar:   avatar,
			})
			if err != nil {
				if errors.Is(err, services.ErrDuplicateEmail) {
					return fmt.Errorf("%s is already registered", email)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! You are logged in as %s.\n", user.Name, user.Email)
			return nil
		},
	}

	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("password", "", "Password (read from stdin when empty)")
	cmd.Flags().String("avatar", "", "Avatar image URL")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			user, err := deps.Sessions.Login(cmd.Context(), services.LoginParams{
				Email:    email,
				Password: password,
			})
			if err != nil {
				if errors.Is(err, services.ErrInvalidCredentials) {
					return errors.New("invalid email or password")
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s!\n", user.Name)
			return nil
		},
	}

	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("password", "", "Password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := deps.Sessions.Logout(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, ok := deps.Sessions.Current()
			if !ok {
				return errNotLoggedIn
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
}

// readPassword takes the --password flag or, when it is empty,
// the first line of stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password != "" {
		return password, nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password = strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}
