package cli

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/projdash/internal/common"
	"github.com/dmitrijs2005/projdash/internal/server/services"
	"github.com/spf13/cobra"
)

func (a *App) newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(a.newUserRegisterCommand(), a.newUserLoginCommand())
	return cmd
}

func (a *App) newUserRegisterCommand() *cobra.Command {
	var (
		req           services.RegisterRequest
		picture       string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := getPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), passwordStdin)
			if err != nil {
				return err
			}
			req.Password = string(pw)
			common.WipeByteArray(pw)

			if picture != "" {
				req.Picture, err = os.ReadFile(picture)
				if err != nil {
					return fmt.Errorf("read picture: %w", err)
				}
			}

			u, err := a.users.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Login, "login", "", "username or e-mail")
	f.StringVar(&req.DisplayName, "display-name", "", "display name")
	f.StringVar(&req.Affiliation, "affiliation", "", "affiliation")
	f.StringVar(&req.TeamID, "team-id", "", "team identifier")
	f.StringVar(&req.Mode, "mode", "", "individual or team")
	f.StringVar(&picture, "picture", "", "profile picture file")
	f.BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("login")
	return cmd
}

func (a *App) newUserLoginCommand() *cobra.Command {
	var (
		login         string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check credentials and print an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := getPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), passwordStdin)
			if err != nil {
				return err
			}

			res, err := a.users.Login(cmd.Context(), login, string(pw))
			common.WipeByteArray(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.AccessToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&login, "login", "", "username or e-mail")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("login")
	return cmd
}
