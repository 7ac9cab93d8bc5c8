package cli

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/projdash/internal/filex"
	"github.com/spf13/cobra"
)

func (a *App) newPictureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "picture",
		Short: "Manage profile pictures",
	}
	cmd.AddCommand(a.newPictureSetCommand(), a.newPictureGetCommand())
	return cmd
}

func (a *App) newPictureSetCommand() *cobra.Command {
	var login string

	cmd := &cobra.Command{
		Use:   "set <image-file>",
		Short: "Replace a user's profile picture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := a.userID(cmd.Context(), login)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read picture: %w", err)
			}
			return a.avatars.Upload(cmd.Context(), uid, data)
		},
	}

	cmd.Flags().StringVar(&login, "user", "", "user login")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (a *App) newPictureGetCommand() *cobra.Command {
	var login, out string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Write a user's profile picture as PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := a.userID(cmd.Context(), login)
			if err != nil {
				return err
			}
			data, _, err := a.avatars.Get(cmd.Context(), uid)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return filex.WriteFileAtomic(out, data, 0o644)
		},
	}

	cmd.Flags().StringVar(&login, "user", "", "user login")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
