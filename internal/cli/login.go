package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token in the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if username == "" || password == "" {
				return fmt.Errorf("please provide --username and --password")
			}

			token, err := a.client().Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}

			path, err := a.configPath()
			if err != nil {
				return err
			}
			a.v.Set("api.token", token)
			if err := a.v.WriteConfigAs(path); err != nil {
				return fmt.Errorf("saving token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s, token saved to %s\n", username, path)
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "Admin username")
	cmd.Flags().StringP("password", "p", "", "Admin password")
	return cmd
}
