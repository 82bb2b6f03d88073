// Command catalogctl manages the course catalog and runs one-off predictions
// without starting the server.
//
//	catalogctl -mode migrate
//	catalogctl -mode import -file Attendance_Dataset2.xlsx [-sheet Sheet1]
//	catalogctl -mode list [-year 2]
//	catalogctl -mode predict -year 2 -code CSC201 -materials Yes -grade 70 -delivery Physical
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"attendance/internal/config"
	"attendance/internal/logger"
	"attendance/internal/model"
	"attendance/internal/predictor"
	"attendance/internal/repository"
	"attendance/internal/service"
	"attendance/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	var (
		mode      = flag.String("mode", "list", "Command: migrate, import, list or predict")
		file      = flag.String("file", "", "Dataset to import (.csv or .xlsx)")
		sheet     = flag.String("sheet", "", "Sheet to read from an .xlsx dataset (default: first sheet)")
		year      = flag.Int("year", 0, "Academic year (list: filter; predict: required)")
		code      = flag.String("code", "", "Course code to predict for")
		materials = flag.String("materials", "Yes", "Course materials available: Yes or No")
		grade     = flag.Int("grade", 70, "Desired grade, 40-100")
		delivery  = flag.String("delivery", string(model.ModePhysical), "Delivery mode: Physical, Hybrid or Online")
	)
	flag.Parse()

	envErr := godotenv.Load()
	logger := logger.New()
	reportEnvFile(logger, envErr)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}
	if err := service.ResolveConfigSecrets(ctx, cfg, logger); err != nil {
		logger.Fatal().Msgf("Error resolving secrets: %v", err)
	}

	switch *mode {
	case "migrate":
		err = migrate(ctx, cfg, logger)
	case "import":
		err = importDataset(ctx, cfg, *file, *sheet, logger)
	case "list":
		err = list(ctx, cfg, *year, logger)
	case "predict":
		err = predict(ctx, cfg, predictArgs{
			year:      *year,
			code:      *code,
			materials: *materials,
			grade:     *grade,
			delivery:  *delivery,
		}, logger)
	default:
		err = fmt.Errorf("unknown mode %q (use: migrate, import, list, predict)", *mode)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("mode", *mode).Msg("catalogctl failed")
	}
}

// reportEnvFile warns when .env could not be loaded; the process still runs
// on the real environment.
func reportEnvFile(logger zerolog.Logger, err error) {
	if err != nil {
		logger.Warn().Err(err).Msg("Warning: no .env file found")
	}
}

func openPool(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*pgxpool.Pool, error) {
	if cfg.DBConnectionString == "" {
		return nil, errors.New("DB_CONNECTION_STRING is required")
	}
	return repository.NewPool(ctx, cfg.DBConnectionString, cfg.Environment, logger)
}

func migrate(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	pool, err := openPool(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	return repository.RunMigrations(pool, logger)
}

func importDataset(ctx context.Context, cfg *config.Config, file, sheet string, logger zerolog.Logger) error {
	if file == "" {
		return errors.New("-file is required for import")
	}
	records, err := service.ReadDataset(ctx, storage.NewFileStore(""), file, sheet, logger)
	if err != nil {
		return err
	}

	pool, err := openPool(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := repository.RunMigrations(pool, logger); err != nil {
		return err
	}

	n, err := repository.NewCourseRepo(pool, logger).UpsertCourses(ctx, records)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d courses from %s\n", n, file)
	return nil
}

// loadCatalog builds the catalog from the configured source, as the server does.
func loadCatalog(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (service.CatalogService, func(), error) {
	cleanup := func() {}
	var repo repository.CourseRepository
	if cfg.CatalogSource == config.SourcePostgres {
		pool, err := openPool(ctx, cfg, logger)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = pool.Close
		repo = repository.NewCourseRepo(pool, logger)
	}
	store, err := storage.New(ctx, cfg, cfg.CatalogSource, logger)
	if err != nil {
		return nil, cleanup, err
	}
	records, err := service.LoadCatalog(ctx, cfg, store, repo, logger)
	if err != nil {
		return nil, cleanup, err
	}
	return service.NewCatalogService(records, logger), cleanup, nil
}

func list(ctx context.Context, cfg *config.Config, year int, logger zerolog.Logger) error {
	catalog, cleanup, err := loadCatalog(ctx, cfg, logger)
	defer cleanup()
	if err != nil {
		return err
	}

	years := []int{year}
	if year == 0 {
		if years, err = catalog.ListYears(); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "YEAR\tCODE\tTITLE\tCREDITS\tSTATUS")
	for _, y := range years {
		courses, err := catalog.ListCourses(y)
		if err != nil {
			return err
		}
		for _, c := range courses {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", c.Year, c.Code, c.Title, c.Credits, c.Status)
		}
	}
	return tw.Flush()
}

type predictArgs struct {
	year      int
	code      string
	materials string
	grade     int
	delivery  string
}

func predict(ctx context.Context, cfg *config.Config, args predictArgs, logger zerolog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	catalog, cleanup, err := loadCatalog(ctx, cfg, logger)
	defer cleanup()
	if err != nil {
		return err
	}

	course, err := catalog.GetCourse(args.year, args.code)
	if err != nil {
		return err
	}
	materials, err := model.ParseMaterials(args.materials)
	if err != nil {
		return err
	}
	mode, err := model.ParseMode(args.delivery)
	if err != nil {
		return err
	}

	modelStore, err := storage.New(ctx, cfg, cfg.ModelSource, logger)
	if err != nil {
		return err
	}
	p, err := predictor.Open(ctx, cfg, modelStore, logger)
	if err != nil {
		return err
	}

	svc := service.NewPredictionService(p, validator.New(validator.WithRequiredStructEnabled()), logger)
	result, err := svc.PredictAttendance(ctx, model.NewPredictionRequest(*course, materials, args.grade, mode))
	if err != nil {
		return err
	}

	fmt.Printf("%s (year %d, %d credits, %s)\n", course.Label(), course.Year, course.Credits, course.Status)
	fmt.Printf("Suggested attendance: %.1f%% [%s]\n", result.AttendancePercent, result.Tier)
	fmt.Println(result.Guidance)
	return nil
}
