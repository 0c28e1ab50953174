package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"trackboard/internal/platform/config"
)

func TestNewWiresBothStores(t *testing.T) {
	t.Parallel()
	for _, store := range []string{config.StoreFile, config.StoreSQLite} {
		t.Run(store, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			dir := t.TempDir()
			cfg, err := config.New(dir, config.Overrides{Store: store})
			if err != nil {
				t.Fatalf("config: %v", err)
			}

			app, err := New(ctx, cfg, nil)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			if _, err := app.SessionCLI.Place(ctx, "Rainbow Road", 2); err != nil {
				t.Fatalf("place: %v", err)
			}
			if err := app.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			reopened, err := New(ctx, cfg, nil)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer func() { _ = reopened.Close() }()
			if got := reopened.SessionCLI.State(ctx).Placements["Rainbow Road"]; got != 2 {
				t.Fatalf("placement not persisted with %s store, got %d", store, got)
			}
			if n := len(reopened.CatalogCLI.Tracks(ctx)); n != 30 {
				t.Fatalf("expected built-in catalog, got %d tracks", n)
			}
		})
	}
}

func TestNewUsesCatalogOverride(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	cfg, err := config.New(dir, config.Overrides{Store: config.StoreFile})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.CatalogPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	yaml := "tracks:\n  - name: Baby Park\n    code: \":bp:\"\n  - name: Yoshi Valley\n"
	if err := os.WriteFile(cfg.CatalogPath, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	app, err := New(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = app.Close() }()
	if _, err := app.SessionCLI.Place(ctx, "baby", 1); err != nil {
		t.Fatalf("place on override track: %v", err)
	}
	if _, err := app.SessionCLI.Place(ctx, "Rainbow Road", 1); err == nil {
		t.Fatalf("built-in tracks must not resolve when the catalog is overridden")
	}
}

func TestNewRejectsBrokenCatalog(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.New(dir, config.Overrides{Store: config.StoreFile})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.CatalogPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(cfg.CatalogPath, []byte("name: [unterminated"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected catalog error")
	}
}
