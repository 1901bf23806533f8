package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/makeeyaf/xcodesync/internal/app"
	"github.com/makeeyaf/xcodesync/internal/model"
	"github.com/makeeyaf/xcodesync/internal/watch"
)

// restoreIdentity rehydrates the session from the credential store. A
// missing or invalid credential yields the logged-out identity without
// error; credential-store failures propagate.
func restoreIdentity(ctx context.Context, a *app.App) (model.Identity, error) {
	identity, err := a.Flow.Restore(ctx)
	if err != nil {
		return model.Identity{}, err
	}
	if !identity.LoggedIn() {
		return model.Identity{}, errors.New("not logged in, run `xcodesync login` first")
	}
	return identity, nil
}

func newUploadCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Replace the remote document with the local files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			identity, err := restoreIdentity(ctx, a)
			if err != nil {
				return err
			}
			return a.Engine(ctx, identity).Upload(ctx, identity)
		},
	}
}

func newDownloadCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Replace the local files with the remote document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			identity, err := restoreIdentity(ctx, a)
			if err != nil {
				return err
			}
			return a.Engine(ctx, identity).Download(ctx, identity)
		},
	}
}

func newWatchCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Upload automatically on local changes and on an interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			identity, err := restoreIdentity(ctx, a)
			if err != nil {
				return err
			}

			if a.Config.LogFile != "" {
				closer := a.UseRotatingLog(a.Config.LogFile)
				defer closer.Close()
			}

			var paths []string
			for _, cat := range a.Config.Categories() {
				paths = append(paths, cat.Dir)
			}

			engine := a.Engine(ctx, identity)
			w := watch.New(paths, a.Config.SyncInterval, func(ctx context.Context) error {
				return engine.Upload(ctx, identity)
			}, a.Log)
			err = w.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
