package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mr1hm/surgery-dashboard/internal/forms"
)

const registerPath = "/registro/"

// skipConfig replaces the root hook for commands that never talk to the server.
func skipConfig(cmd *cobra.Command, args []string) error { return nil }

var bmiCmd = &cobra.Command{
	Use:               "bmi <weight-kg> <height-cm>",
	Short:             "Compute body mass index",
	Args:              cobra.ExactArgs(2),
	PersistentPreRunE: skipConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		bmi, err := forms.ParseBMI(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), bmi)
		return nil
	},
}

var passwordCmd = &cobra.Command{
	Use:               "password <password>",
	Short:             "Rate a password's strength",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: skipConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		score, level := forms.PasswordStrength(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d/5)\n", level, score)
		return nil
	},
}

var reg forms.Registration

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Validate and submit a physician registration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := reg.Validate(); err != nil {
			return err
		}
		if _, level := forms.PasswordStrength(reg.Password); level == forms.StrengthWeak {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: weak password")
		}

		c, err := newClient(cmd.Context(), registerPath)
		if err != nil {
			return err
		}
		vals := url.Values{
			"usuario":   {reg.Username},
			"email":     {reg.Email},
			"password1": {reg.Password},
			"password2": {reg.ConfirmPassword},
		}
		if err := c.SubmitForm(cmd.Context(), registerPath, vals); err != nil {
			return fmt.Errorf("error submitting registration: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "registration submitted")
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&reg.Username, "username", "", "Username (letters, digits, dots, underscores)")
	registerCmd.Flags().StringVar(&reg.Email, "email", "", "Email address")
	registerCmd.Flags().StringVar(&reg.Password, "password", "", "Password")
	registerCmd.Flags().StringVar(&reg.ConfirmPassword, "confirm-password", "", "Password confirmation")
}
