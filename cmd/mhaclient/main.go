// Command mhaclient is the desktop client for the MHA roguelike server. It
// opens a window by default, or runs in the terminal with -frontend terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"chosenoffset.com/mhaclient/internal/api"
	"chosenoffset.com/mhaclient/internal/assets"
	"chosenoffset.com/mhaclient/internal/client"
	"chosenoffset.com/mhaclient/internal/config"
	"chosenoffset.com/mhaclient/internal/locale"
	ebitenrender "chosenoffset.com/mhaclient/internal/render/ebiten"
	"chosenoffset.com/mhaclient/internal/save"
	"chosenoffset.com/mhaclient/internal/ui"
	"chosenoffset.com/mhaclient/internal/ui/gui"
	"chosenoffset.com/mhaclient/internal/ui/terminal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what both front ends share.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	printer *locale.Printer
	pack    *assets.Pack
	store   save.Store
	server  *api.Client
	loader  *assets.Loader
}

func run() error {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, logger: logger, printer: locale.New(cfg.Lang)}

	a.pack = assets.Default()
	if cfg.AssetPack != "" {
		if a.pack, err = assets.LoadPack(cfg.AssetPack); err != nil {
			return err
		}
	}

	if a.store, err = openStore(cfg); err != nil {
		return err
	}
	defer a.store.Close()

	a.server, err = api.New(cfg.ServerURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithRetries(cfg.Retries),
		api.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	a.loader = assets.NewLoader(cfg.ServerURL, a.pack, cfg.RequestTimeout, logger)
	if cfg.Preload {
		go func() {
			if err := a.loader.Preload(ctx, a.pack.ImagePaths()); err != nil {
				logger.Debug("preload stopped", "error", err)
			}
		}()
	}

	logger.Info("starting client",
		"server", cfg.ServerURL,
		"frontend", cfg.Frontend,
		"save_backend", cfg.SaveBackend,
		"lang", a.printer.Tag().String(),
	)
	if cfg.Frontend == config.FrontendTerminal {
		return a.runTerminal(ctx)
	}
	return a.runGUI(ctx)
}

func openStore(cfg config.Config) (save.Store, error) {
	if cfg.SaveBackend == config.BackendMemory {
		return save.NewMemoryStore(), nil
	}
	path, err := cfg.ResolveSavePath()
	if err != nil {
		return nil, err
	}
	if cfg.SaveBackend == config.BackendSQLite {
		return save.OpenSQLiteStore(path)
	}
	return save.OpenFileStore(path)
}

func (a *app) newController(surface ui.Surface) (*client.Renderer, error) {
	return client.New(client.Options{
		Server:  a.server,
		Store:   a.store,
		Surface: surface,
		Pack:    a.pack,
		Logger:  a.logger,
		Printer: a.printer,
	})
}

func (a *app) runTerminal(ctx context.Context) error {
	surface := terminal.New(terminal.Options{
		Out:     os.Stdout,
		Width:   100,
		Height:  30,
		Color:   isatty.IsTerminal(os.Stdout.Fd()),
		Printer: a.printer,
	})
	ctrl, err := a.newController(surface)
	if err != nil {
		return err
	}
	ctrl.Startup(ctx)
	return terminal.Run(ctx, ctrl, surface, os.Stdin, a.pack.Tutorial(), a.logger)
}

func (a *app) runGUI(ctx context.Context) error {
	r, err := ebitenrender.NewRenderer(ebitenrender.DefaultFontSize)
	if err != nil {
		return err
	}
	engine := ebitenrender.NewEngine()

	view, err := gui.New(ctx, gui.Options{
		Renderer: r,
		Input:    ebitenrender.NewInputManager(),
		Images:   a.loader,
		Printer:  a.printer,
		Logger:   a.logger,
		Width:    a.cfg.WindowWidth,
		Height:   a.cfg.WindowHeight,
		Tutorial: a.pack.Tutorial(),
	})
	if err != nil {
		return err
	}
	ctrl, err := a.newController(view)
	if err != nil {
		return err
	}
	view.Bind(ctrl)
	ctrl.Startup(ctx)

	engine.SetWindowSize(a.cfg.WindowWidth, a.cfg.WindowHeight)
	engine.SetWindowTitle("MHA Roguelike")
	engine.SetWindowResizable(true)

	a.logger.Info("opening window", "width", a.cfg.WindowWidth, "height", a.cfg.WindowHeight)
	if err := engine.RunGame(view); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	return nil
}
