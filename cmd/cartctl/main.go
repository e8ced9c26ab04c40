package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ikkim/storefront-cart/config"
	"github.com/ikkim/storefront-cart/internal/app/model"
	"github.com/ikkim/storefront-cart/internal/app/storage"
	"github.com/ikkim/storefront-cart/internal/app/store"
	"github.com/ikkim/storefront-cart/pkg/logger"
)

const usage = `Usage: cartctl <command> [flags]

Commands:
  show                      print the cart and totals
  add -id ID [flags]        add one unit of a product
  remove -id ID             remove a line
  update -id ID -qty N      set a line's quantity
  clear                     empty the cart
  open | close              toggle the cart panel flag
`

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: true,
	})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	backend, cleanup, err := newBackend(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage backend", err, map[string]interface{}{
			"backend": cfg.Storage.Backend,
		})
	}
	defer cleanup()

	s := store.New(backend)
	ctx := store.NewContext(context.Background(), s)
	s.Hydrate(ctx)

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func newBackend(cfg *config.Config) (storage.KeyValueStore, func(), error) {
	switch cfg.Storage.Backend {
	case "memory":
		return storage.NewMemoryStore(), func() {}, nil
	case "file":
		return storage.NewFileStore(cfg.Storage.FilePath), func() {}, nil
	case "redis":
		rs, err := storage.NewRedisStore(&cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() {
			if err := rs.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func run(ctx context.Context, command string, args []string) error {
	s := store.FromContext(ctx)

	switch command {
	case "show":

	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		name := fs.String("name", "", "display name")
		price := fs.Float64("price", 0, "unit price")
		desc := fs.String("desc", "", "description")
		image := fs.String("image", "", "image URL")
		fs.Parse(args)
		s.AddToCart(ctx, model.Product{
			ID:          *id,
			Name:        *name,
			Price:       *price,
			Description: *desc,
			Image:       *image,
		})

	case "remove":
		fs := flag.NewFlagSet("remove", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		fs.Parse(args)
		s.RemoveFromCart(ctx, *id)

	case "update":
		fs := flag.NewFlagSet("update", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		qty := fs.Int("qty", 1, "quantity")
		fs.Parse(args)
		s.UpdateQuantity(ctx, *id, *qty)

	case "clear":
		s.ClearCart(ctx)

	case "open":
		s.SetIsCartOpen(true)

	case "close":
		s.SetIsCartOpen(false)

	default:
		return fmt.Errorf("unknown command %q", command)
	}

	printCart(s)
	return nil
}

func printCart(s *store.Store) {
	items := s.Items()
	if len(items) == 0 {
		fmt.Println("cart is empty")
	}
	for _, item := range items {
		fmt.Printf("%-12s x%-3d %10.2f  %s\n", item.ID, item.Quantity, item.Price, item.Name)
	}
	fmt.Printf("total: %d item(s), %.2f (panel open: %v)\n",
		s.TotalItems(), s.TotalPrice(), s.IsCartOpen())
}
