package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/makeeyaf/xcodesync/internal/app"
	"github.com/makeeyaf/xcodesync/internal/gist"
)

func newRemoteCmd(a *app.App) *cobra.Command {
	remote := &cobra.Command{
		Use:   "remote",
		Short: "Inspect or remove the remote document",
	}
	remote.AddCommand(newRemoteShowCmd(a), newRemoteDeleteCmd(a))
	return remote
}

func newRemoteShowCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List the files in the remote document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			identity, err := restoreIdentity(ctx, a)
			if err != nil {
				return err
			}

			docs := a.Documents(ctx, identity)
			id, err := docs.FindOwned(ctx, identity.Username)
			if errors.Is(err, gist.ErrNotFound) {
				cmd.Println("No remote document")
				return nil
			}
			if err != nil {
				return err
			}

			snap, err := docs.Read(ctx, id)
			if err != nil {
				return err
			}
			cmd.Printf("Document %s, updated %s\n", snap.ID, snap.UpdatedAt.Format("2006-01-02 15:04:05"))
			for name := range snap.Files {
				cmd.Printf("  %s\n", name)
			}
			return nil
		},
	}
}

func newRemoteDeleteCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the entire remote document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			identity, err := restoreIdentity(ctx, a)
			if err != nil {
				return err
			}

			docs := a.Documents(ctx, identity)
			id, err := docs.FindOwned(ctx, identity.Username)
			if errors.Is(err, gist.ErrNotFound) {
				cmd.Println("No remote document")
				return nil
			}
			if err != nil {
				return err
			}

			if err := docs.Delete(ctx, id); err != nil {
				return err
			}
			a.Log.WithField("document", id).Info("deleted remote document")
			return nil
		},
	}
}
