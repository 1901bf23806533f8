package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/makeeyaf/xcodesync/internal/app"
	"github.com/makeeyaf/xcodesync/internal/auth"
)

func newLoginCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize with GitHub and store the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			srv := startCallbackServer(a)
			defer srv.Shutdown(context.Background())

			identity, err := a.Flow.Login(ctx)
			if err != nil {
				return err
			}
			a.Log.WithField("user", identity.Username).Info("logged in")
			return nil
		},
	}
}

// startCallbackServer listens on the loopback callback address and feeds
// the redirect's code and state into the flow. The flow itself accepts at
// most one callback per login attempt; extra hits are dropped there.
func startCallbackServer(a *app.App) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		delivered := a.Flow.HandleCallback(auth.Callback{
			Code:  q.Get("code"),
			State: q.Get("state"),
		})
		if !delivered {
			http.Error(w, "no login in progress", http.StatusConflict)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>Authorized. You can close this window.</body></html>"))
	})

	srv := &http.Server{
		Addr:              a.Config.CallbackAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.WithError(err).Error("callback listener failed")
		}
	}()
	return srv
}

func newLogoutCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.Flow.Logout(); err != nil {
				return err
			}
			a.Log.Info("logged out")
			return nil
		},
	}
}

func newStatusCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := a.Flow.Restore(cmd.Context())
			if err != nil {
				return err
			}
			if !identity.LoggedIn() {
				cmd.Println("Not logged in")
				return nil
			}
			cmd.Printf("Logged in as %s\n", identity.Username)
			return nil
		},
	}
}
