package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"storefront/internal/model"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		Long: `Signs in with email and password. The password is prompted for when
--password is not given; piped stdin is read as the password.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := c.readSecret(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = p
			}

			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			sess, err := app.Session.Login(cmd.Context(), model.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}
			c.printSuccess("Signed in as %s (%s)", sess.User.Username, sess.User.Role)
			if n := app.Cart.TotalItems(); n > 0 {
				c.printInfo("Your cart has %d item(s)", n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := password
			if password == "" {
				var err error
				if password, err = c.readSecret(cmd, "Password: "); err != nil {
					return err
				}
				if confirm, err = c.readSecret(cmd, "Confirm password: "); err != nil {
					return err
				}
			}

			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			sess, err := app.Session.Register(cmd.Context(), model.Registration{
				Username:        username,
				Email:           email,
				Password:        password,
				ConfirmPassword: confirm,
			})
			if err != nil {
				return err
			}
			c.printSuccess("Registered and signed in as %s", sess.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			app.Session.Logout(cmd.Context())
			c.printSuccess("Signed out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			sess := app.Session.Current()
			if sess == nil {
				c.printInfo("Not signed in")
				return nil
			}
			fmt.Fprintf(c.out, "%s <%s> %s\n", sess.User.Username, sess.User.Email, strings.ToUpper(sess.User.Role))
			return nil
		},
	}
}

func (c *cli) forgotPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Email a password reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Session.ForgotPassword(cmd.Context(), args[0]); err != nil {
				return err
			}
			c.printSuccess("If %s has an account, a reset link is on its way", args[0])
			return nil
		},
	}
}

func (c *cli) resetPasswordCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "reset-password <token>",
		Short: "Set a new password using the token from the reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := password
			if password == "" {
				var err error
				if password, err = c.readSecret(cmd, "New password: "); err != nil {
					return err
				}
				if confirm, err = c.readSecret(cmd, "Confirm password: "); err != nil {
					return err
				}
			}

			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Session.ResetPassword(cmd.Context(), args[0], password, confirm); err != nil {
				return err
			}
			c.printSuccess("Password changed; sign in with 'storefront login'")
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "new password")
	return cmd
}
