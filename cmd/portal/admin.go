package main

import (
	"errors"
	"fmt"

	"github.com/pac-voluntarios/portal/internal/app"
	"github.com/pac-voluntarios/portal/internal/config"
	"github.com/spf13/cobra"
)

func profileCmd(appCfg *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage portal profiles",
	}
	cmd.AddCommand(profileCreateCmd(appCfg))
	return cmd
}

func profileCreateCmd(appCfg *config.AppConfig) *cobra.Command {
	var params app.CreateProfileParams

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a profile with a login password",
		Example: `  portal profile create --email chefe@pac.org --role admin --matricula PAC-001 --password '...'
  portal profile create --email agente@pac.org --name "Agente" --password '...'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.CreateProfile(cmd.Context(), *appCfg, params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Email, "email", "", "login e-mail")
	cmd.Flags().StringVar(&params.Name, "name", "", "display name")
	cmd.Flags().StringVar(&params.Matricula, "matricula", "", "volunteer registration number")
	cmd.Flags().StringVar(&params.Role, "role", "agent", "admin or agent")
	cmd.Flags().StringVar(&params.Password, "password", "", "login password")
	cmd.Flags().BoolVar(&params.Inactive, "inactive", false, "create the account inactive")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func stepUpCmd(appCfg *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stepup",
		Short: "Manage administrative passwords",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset <user-id>",
		Short: "Clear a profile's administrative password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.ResetStepUp(cmd.Context(), *appCfg, args[0])
			if err != nil {
				return err
			}
			if !res.Success {
				return errors.New(res.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	})
	return cmd
}

func cacheCmd(appCfg *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the shared role cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop all cached roles from the redis cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ClearRoleCache(cmd.Context(), *appCfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "role cache cleared")
			return nil
		},
	})
	return cmd
}
