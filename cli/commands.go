package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/zot/n4games/internal/catalog"
	"github.com/zot/n4games/internal/config"
	"github.com/zot/n4games/internal/mcp"
	"github.com/zot/n4games/internal/server"
	"github.com/zot/n4games/internal/widget"
)

// loadCatalog loads the configuration and bootstraps a registry from the
// configured manifest, or from the built-in catalog when none is set.
func loadCatalog(args []string) (*config.Config, *widget.Registry, error) {
	cfg, err := config.Load(args)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	manifest := catalog.Default()
	if cfg.Catalog.Manifest != "" {
		if manifest, err = catalog.Load(cfg.Catalog.Manifest); err != nil {
			return cfg, nil, err
		}
	}

	var opts []widget.RegistryOption
	if cfg.LateRegistration() {
		opts = append(opts, widget.WithLateRegistration())
	}
	reg := widget.New(opts...)
	if err := catalog.Bootstrap(reg, manifest); err != nil {
		return cfg, nil, err
	}
	cfg.Log(1, "Catalog ready: %d widgets", reg.Len())
	return cfg, reg, nil
}

func fail(err error) int {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func runServe(args []string) int {
	cfg, reg, err := loadCatalog(args)
	if err != nil {
		return fail(err)
	}

	srv := server.New(cfg, reg)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cfg.Log(0, "Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	if err := srv.Start(); err != nil {
		return fail(fmt.Errorf("server error: %w", err))
	}
	return 0
}

func runMCP(args []string) int {
	cfg, reg, err := loadCatalog(args)
	if err != nil {
		return fail(err)
	}
	if err := mcp.NewServer(cfg, reg).ServeStdio(); err != nil {
		return fail(err)
	}
	return 0
}

func runList(args []string) int {
	_, reg, err := loadCatalog(args)
	if err != nil {
		return fail(err)
	}
	ids, err := reg.List()
	if err != nil {
		return fail(err)
	}
	for _, id := range ids {
		fmt.Fprintln(stdout, id)
	}
	return 0
}

func runResolve(args []string) int {
	cfg, reg, err := loadCatalog(args)
	if err != nil {
		return fail(err)
	}
	if len(cfg.Args) != 1 {
		fmt.Fprintln(stderr, "Usage: n4games resolve [options] <id>")
		return 1
	}
	w, err := reg.Resolve(cfg.Args[0])
	if err != nil {
		return fail(err)
	}
	output, _ := json.MarshalIndent(catalog.ViewOf(w), "", "  ")
	fmt.Fprintln(stdout, string(output))
	return 0
}

func runBundles(args []string) int {
	_, reg, err := loadCatalog(args)
	if err != nil {
		return fail(err)
	}
	bundles, err := reg.Bundles()
	if err != nil {
		return fail(err)
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, b := range bundles {
		fmt.Fprintf(tw, "%s\t%s\n", b.Name(), b.Locator())
	}
	tw.Flush()
	return 0
}

func runCheck(args []string) int {
	cfg, reg, err := loadCatalog(args)
	if err != nil {
		return fail(err)
	}
	bundles, err := reg.Bundles()
	if err != nil {
		return fail(err)
	}
	source := cfg.Catalog.Manifest
	if source == "" {
		source = "built-in catalog"
	}
	fmt.Fprintf(stdout, "%s: %d bundles, %d widgets\n", source, len(bundles), reg.Len())
	return 0
}
