package main

import (
	"fmt"

	"github.com/localnerve/recipedb/internal/services"
	"github.com/spf13/cobra"
)

var (
	userName     string
	userEmail    string
	userPassword string
	userAdmin    bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Long: `Create adds a user account with a local password.

Example:
  recipectl user create --name "Ada" --email ada@example.com --password s3cretpass
  recipectl user create --name "Admin" --email admin@example.com --password s3cretpass --admin`,
	Args: cobra.NoArgs,
	RunE: runUserCreate,
}

var userMakeAdminCmd = &cobra.Command{
	Use:   "make-admin EMAIL",
	Short: "Grant admin permissions to a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := services.GrantAdmin(db, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "User %s (id %d) is now an admin\n", user.Email, user.ID)
		return nil
	},
}

var userResetPasswordCmd = &cobra.Command{
	Use:   "reset-password EMAIL",
	Short: "Set a user's password",
	Long: `Reset-password sets a new password. A random password is generated
and printed when --password is omitted.`,
	Args: cobra.ExactArgs(1),
	RunE: runUserResetPassword,
}

func init() {
	userCreateCmd.Flags().StringVar(&userName, "name", "", "display name (required)")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address (required)")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "password (required)")
	userCreateCmd.Flags().BoolVar(&userAdmin, "admin", false, "grant admin permissions")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	userResetPasswordCmd.Flags().StringVar(&userPassword, "password", "", "new password (default: generated)")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userMakeAdminCmd)
	userCmd.AddCommand(userResetPasswordCmd)
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	user, err := services.CreateUser(db, userName, userEmail, userPassword, userAdmin)
	if err != nil {
		return err
	}

	role := "user"
	if user.IsAdmin() {
		role = "admin"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (id %d)\n", role, user.Email, user.ID)
	return nil
}

func runUserResetPassword(cmd *cobra.Command, args []string) error {
	password := userPassword
	generated := password == ""
	if generated {
		password = services.GeneratePassword(16)
	}

	if err := services.SetPassword(db, args[0], password); err != nil {
		return err
	}

	if generated {
		fmt.Fprintf(cmd.OutOrStdout(), "New password for %s: %s\n", args[0], password)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", args[0])
	}
	return nil
}
