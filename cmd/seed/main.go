package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/pflag"

	"github.com/rl1809/pizzan/internal/adapter/storage"
	"github.com/rl1809/pizzan/internal/config"
	"github.com/rl1809/pizzan/internal/core/domain"
	"github.com/rl1809/pizzan/internal/core/service"
)

var menu = []struct {
	name, category, origin string
	price                  float64
}{
	{"Margherita", "classic", "Naples", 9},
	{"Marinara", "classic", "Naples", 8},
	{"Diavola", "spicy", "Calabria", 12},
	{"Quattro Formaggi", "cheese", "Lombardy", 13},
	{"Capricciosa", "classic", "Rome", 12.5},
	{"Funghi", "vegetarian", "Piedmont", 10},
	{"Calzone", "folded", "Naples", 11},
	{"Bianca", "white", "Rome", 10.5},
}

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file merged into the environment")
	count := pflag.IntP("count", "n", 50, "number of menu items to insert")
	workers := pflag.IntP("workers", "w", 8, "concurrent inserters")
	owner := pflag.String("owner", "chef@pizzan.test", "email stamped on every item")
	pflag.Parse()

	if err := validateFlags(*count, *workers); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Read(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer store.Close(ctx)

	if err := store.Ping(ctx); err != nil {
		logger.Error("ping store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}

	catalog := service.NewCatalogService(store, nil, logger)

	jobs := make(chan int)
	var successCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if _, err := catalog.Insert(ctx, menuItem(i, *owner)); err != nil {
					logger.Warn("insert failed", "item", i, "error", err)
					failCount.Add(1)
					continue
				}
				successCount.Add(1)
			}
		}()
	}

	for i := 0; i < *count; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	elapsed := time.Since(start)

	total, err := catalog.Count(ctx)
	if err != nil {
		logger.Warn("count foods", "error", err)
	}

	fmt.Println("============ SEED RESULTS ============")
	fmt.Printf("Store Driver:     %s\n", cfg.Store.Driver)
	fmt.Printf("Requested:        %d\n", *count)
	fmt.Printf("Inserted:         %d\n", successCount.Load())
	fmt.Printf("Failed:           %d\n", failCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Printf("Estimated Count:  %d\n", total)
	fmt.Println("======================================")

	if failCount.Load() > 0 {
		os.Exit(1)
	}
}

func validateFlags(count, workers int) error {
	if workers < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", workers)
	}
	if count < 0 {
		return fmt.Errorf("--count must not be negative, got %d", count)
	}
	return nil
}

func menuItem(i int, owner string) domain.MenuItem {
	base := menu[i%len(menu)]
	return domain.MenuItem{
		Name:        fmt.Sprintf("%s #%d", base.name, i+1),
		Maker:       "Pizzan Kitchen",
		Description: fmt.Sprintf("%s pizza from %s", base.name, base.origin),
		Origin:      base.origin,
		Image:       fmt.Sprintf("https://img.pizzan.test/%d.jpg", i%len(menu)),
		Price:       base.price,
		Category:    base.category,
		Email:       owner,
		Quantity:    20 + i%10,
	}
}
