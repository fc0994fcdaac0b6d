package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/elee1766/grubguide/src/app"
	"github.com/elee1766/grubguide/src/catalog"
	"github.com/elee1766/grubguide/src/config"
)

// CatalogCmd manages the restaurant catalog
type CatalogCmd struct {
	Seed  CatalogSeedCmd  `cmd:"" help:"Replace the catalog with a seed file or the demo data"`
	Reset CatalogResetCmd `cmd:"" help:"Remove every restaurant and review"`
	Show  CatalogShowCmd  `cmd:"" help:"List restaurants with their review counts"`
}

// CatalogSeedCmd replaces the catalog contents
type CatalogSeedCmd struct {
	File string `short:"f" type:"existingfile" help:"JSON seed file with restaurants and reviews"`
}

func (c *CatalogSeedCmd) Run(ctx *kong.Context, cli *CLI) error {
	appInstance, err := newCatalogApp(cli)
	if err != nil {
		return err
	}
	defer appInstance.Close()

	data, err := appInstance.SeedCatalog(context.Background(), c.File)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(ctx.Stdout, "seeded %d restaurants and %d reviews\n", len(data.Restaurants), len(data.Reviews))
	return err
}

// CatalogResetCmd empties the catalog
type CatalogResetCmd struct{}

func (c *CatalogResetCmd) Run(ctx *kong.Context, cli *CLI) error {
	appInstance, err := newCatalogApp(cli)
	if err != nil {
		return err
	}
	defer appInstance.Close()

	if err := appInstance.Catalog.Reset(context.Background()); err != nil {
		return fmt.Errorf("failed to reset catalog: %w", err)
	}
	_, err = fmt.Fprintln(ctx.Stdout, "catalog cleared")
	return err
}

// CatalogShowCmd prints the catalog
type CatalogShowCmd struct{}

func (c *CatalogShowCmd) Run(ctx *kong.Context, cli *CLI) error {
	appInstance, err := newCatalogApp(cli)
	if err != nil {
		return err
	}
	defer appInstance.Close()

	return printCatalog(context.Background(), ctx.Stdout, appInstance.Catalog)
}

// newCatalogApp builds the app for catalog maintenance. Changes to the
// memory driver are lost when the command exits.
func newCatalogApp(cli *CLI) (*app.App, error) {
	cfg, err := loadConfig(cli)
	if err != nil {
		return nil, err
	}
	cfg.Engine.Provider = config.ProviderLocal
	logger := createCLILogger(cfg.Logging.Level, "text")
	if cfg.Store.Driver == config.DriverMemory {
		logger.Warn("store driver is memory, catalog changes will not persist")
	}
	return app.New(context.Background(), app.Options{Config: cfg, Logger: logger, Fs: appFs(cli), Version: version})
}

func printCatalog(ctx context.Context, w io.Writer, store catalog.Store) error {
	restaurants, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list restaurants: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCUISINE\tREVIEWS\tAVG")
	for _, r := range restaurants {
		reviews, err := store.ListByRestaurant(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("failed to list reviews for %s: %w", r.ID, err)
		}
		avg := "-"
		if len(reviews) > 0 {
			total := 0
			for _, rv := range reviews {
				total += rv.Rating
			}
			avg = fmt.Sprintf("%.1f", float64(total)/float64(len(reviews)))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Name, r.Cuisine, len(reviews), avg)
	}
	return tw.Flush()
}
