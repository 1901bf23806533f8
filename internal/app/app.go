// Package app wires the application together: configuration, logging,
// credential storage, the authorization flow, and the sync engine. It is
// the only place components are constructed; nothing holds ambient global
// state.
package app

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/makeeyaf/xcodesync/internal/auth"
	"github.com/makeeyaf/xcodesync/internal/config"
	"github.com/makeeyaf/xcodesync/internal/credentials"
	"github.com/makeeyaf/xcodesync/internal/gist"
	"github.com/makeeyaf/xcodesync/internal/gist/github"
	"github.com/makeeyaf/xcodesync/internal/gist/memory"
	"github.com/makeeyaf/xcodesync/internal/localstore"
	"github.com/makeeyaf/xcodesync/internal/model"
	syncengine "github.com/makeeyaf/xcodesync/internal/sync"
)

// App holds the constructed application components.
type App struct {
	Config *config.Config
	Log    *logrus.Logger
	Creds  credentials.Store
	Flow   *auth.Flow
	Local  *localstore.Store

	// memDocs backs dev mode so repeated commands in one process share
	// remote state.
	memDocs *memory.Store
}

// New builds the application from configuration.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var creds credentials.Store
	if cfg.DevMode {
		creds = credentials.NewMemory()
		log.Info("dev mode: using in-memory credential store")
	} else {
		creds = credentials.NewKeyring(config.AppName, config.AppName)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{config.Scope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
	}

	a := &App{
		Config: cfg,
		Log:    log,
		Creds:  creds,
		Flow:   auth.New(oauthCfg, cfg.UserURL, creds, openBrowser, log),
		Local:  localstore.New(cfg.Categories(), log),
	}
	if cfg.DevMode {
		a.memDocs = memory.New(config.DescriptionTag)
	}
	return a, nil
}

// Documents returns the document store for the given identity: the GitHub
// client in normal operation, the shared in-memory store in dev mode.
func (a *App) Documents(ctx context.Context, identity model.Identity) gist.DocumentStore {
	if a.memDocs != nil {
		return a.memDocs
	}
	return github.New(ctx, a.Config.APIURL, config.DescriptionTag, identity.AccessToken)
}

// Engine returns a sync engine bound to the identity's document store.
func (a *App) Engine(ctx context.Context, identity model.Identity) *syncengine.Engine {
	return syncengine.New(a.Local, a.Documents(ctx, identity), config.DescriptionTag, a.Log)
}

// UseRotatingLog switches log output to a size-rotated file. Watch mode
// uses this so a long-running session does not grow an unbounded log.
func (a *App) UseRotatingLog(path string) io.Closer {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
	}
	a.Log.SetOutput(w)
	return w
}

// openBrowser launches the default browser with the given URL.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
