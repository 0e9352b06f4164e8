// Command bistroctl runs one-off administration tasks against the bistro database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"bistro/internal/config"
	"bistro/internal/database"
	"bistro/internal/model"
	"bistro/internal/promo"
	"bistro/internal/repository"
	"bistro/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
)

const usage = `usage:
  bistroctl migrate
  bistroctl staff bootstrap-owner -username NAME -password PASS [-email EMAIL]
  bistroctl staff list
  bistroctl promo import -discount N [-max-uses N] [-expires YYYY-MM-DD] FILE...`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	if args[0] == "migrate" {
		return database.Migrate(cfg.Database.ConnectionString(), logger)
	}
	if len(args) < 2 {
		return fmt.Errorf("missing subcommand\n%s", usage)
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	switch args[0] + " " + args[1] {
	case "staff bootstrap-owner":
		return bootstrapOwner(ctx, pool, args[2:], out, logger)
	case "staff list":
		return listStaff(ctx, pool, out, logger)
	case "promo import":
		return importPromos(ctx, cfg, pool, args[2:], out, logger)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0]+" "+args[1], usage)
	}
}

func bootstrapOwner(ctx context.Context, pool *pgxpool.Pool, args []string, out io.Writer, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("bootstrap-owner", flag.ContinueOnError)
	username := fs.String("username", "", "owner username")
	password := fs.String("password", "", "password for a new account")
	email := fs.String("email", "", "email for a new account")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("-username is required")
	}

	staff := service.NewStaffService(repository.NewAccountRepository(pool, logger), logger)
	member, err := staff.BootstrapOwner(ctx, &model.StaffRequest{
		Username:  *username,
		Email:     *email,
		Password:  *password,
		Password2: *password,
		Role:      model.RoleOwner,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s is now owner (profile %d)\n", member.Account.Username, member.Profile.ID)
	return nil
}

func listStaff(ctx context.Context, pool *pgxpool.Pool, out io.Writer, logger zerolog.Logger) error {
	staff := service.NewStaffService(repository.NewAccountRepository(pool, logger), logger)
	listing, err := staff.List(ctx)
	if err != nil {
		return err
	}
	return printStaff(out, listing)
}

func printStaff(out io.Writer, listing *model.StaffListing) error {
	table := tablewriter.NewWriter(out)
	table.Header("ID", "Username", "Name", "Email", "Role", "Active")
	for _, m := range listing.Staff {
		if err := table.Append([]string{
			strconv.FormatInt(m.Profile.ID, 10),
			m.Account.Username,
			m.Account.FullName(),
			m.Account.Email,
			string(m.Profile.Role),
			strconv.FormatBool(m.Profile.IsActive),
		}); err != nil {
			return fmt.Errorf("failed to add table row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	fmt.Fprintf(out, "%d staff, %d active\n", listing.TotalStaff, listing.ActiveStaff)
	return nil
}

func importPromos(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, args []string, out io.Writer, logger zerolog.Logger) error {
	tmpl, files, err := parseImportArgs(args)
	if err != nil {
		return err
	}

	// Initialize code loader with S3 and local fallback
	var s3Loader promo.Loader
	if cfg.S3.Enabled {
		s3Loader, err = promo.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			s3Loader = nil
		}
	}
	loader := promo.NewFallbackLoader(s3Loader, promo.NewFileLoader(logger), cfg.S3.Prefix, logger)

	importer := promo.NewImporter(loader, repository.NewPromoRepository(pool, logger), logger)
	result, err := importer.Import(ctx, files, tmpl)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "created %d promo codes, skipped %d existing\n", result.Created, result.Skipped)
	return nil
}

func parseImportArgs(args []string) (promo.ImportTemplate, []string, error) {
	fs := flag.NewFlagSet("promo import", flag.ContinueOnError)
	discount := fs.Int("discount", 0, "discount percent (1-100)")
	maxUses := fs.Int("max-uses", service.DefaultPromoMaxUses, "uses per code")
	expires := fs.String("expires", "", "expiry date, YYYY-MM-DD (end of day)")
	if err := fs.Parse(args); err != nil {
		return promo.ImportTemplate{}, nil, err
	}

	tmpl := promo.ImportTemplate{DiscountPercent: *discount, MaxUses: *maxUses}
	if *expires != "" {
		day, err := time.ParseInLocation("2006-01-02", *expires, time.Local)
		if err != nil {
			return promo.ImportTemplate{}, nil, fmt.Errorf("invalid -expires %q: %w", *expires, err)
		}
		end := day.Add(24*time.Hour - time.Second)
		tmpl.ExpiresAt = &end
	}
	if err := tmpl.Validate(); err != nil {
		return promo.ImportTemplate{}, nil, err
	}
	if fs.NArg() == 0 {
		return promo.ImportTemplate{}, nil, fmt.Errorf("at least one code file is required")
	}
	return tmpl, fs.Args(), nil
}
