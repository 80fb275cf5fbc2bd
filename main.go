package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cogconverter/config"
	"cogconverter/logging"
	"cogconverter/models"
	"cogconverter/services"
	"cogconverter/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Parse(args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	dest, err := services.ParseDestination(cfg.OutPath)
	if err != nil {
		log.Error().Err(err).Msg("Invalid output location")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := &models.Job{
		InPath:          cfg.InPath,
		OutPath:         cfg.OutPath,
		TmpPath:         cfg.TmpPath,
		ChunkSize:       cfg.ChunkSize,
		KeyPathname:     cfg.KeyPathname,
		CreationOptions: cfg.CreationOptions,
	}

	if cfg.KeyPathname != "" {
		if _, err := os.Stat(cfg.KeyPathname); err != nil {
			log.Warn().Str("key_pathname", cfg.KeyPathname).Msg("Credentials file not found, using default credentials")
		}
	}

	uploader, closeUploader, err := newUploader(ctx, cfg, dest)
	if err != nil {
		log.Error().Err(err).Str("destination", dest.String()).Msg("Failed to create storage client")
		return 1
	}
	defer closeUploader()

	relocator, err := services.NewRelocator(dest, cfg.TmpPath, uploader)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create relocator")
		return 1
	}

	recorders, closeRecorders, err := newRecorders(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect outcome ledger")
		return 1
	}
	defer closeRecorders()

	images, err := worker.ResolveInputs(cfg.InPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve input")
		return 2
	}
	if len(images) == 0 {
		log.Warn().Str("in_path", cfg.InPath).Msg("No images matched")
	}

	gdal := services.NewGDALService(cfg.GDALInfoBin, cfg.GDALTranslateBin)
	converter := services.NewConverter(gdal, cfg.TmpPath, cfg.CreationOptions)

	runner := worker.NewRunner(job, converter, relocator, dest.String(), log, recorders...)
	summary := runner.Run(ctx, images)

	if summary.Failed > 0 {
		log.Warn().Int("failed", summary.Failed).Msg("Some images were not converted")
	}
	return 0
}

func newUploader(ctx context.Context, cfg *config.Config, dest services.Destination) (services.Uploader, func(), error) {
	switch dest.Kind {
	case services.KindS3:
		svc, err := services.NewS3Service(cfg, dest.Bucket)
		if err != nil {
			return nil, nil, err
		}
		return svc, func() {}, nil
	case services.KindGS:
		svc, err := services.NewGCSService(ctx, dest.Bucket, cfg.ChunkSize, cfg.KeyPathname)
		if err != nil {
			return nil, nil, err
		}
		return svc, func() { svc.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}

func newRecorders(ctx context.Context, cfg *config.Config, log zerolog.Logger) ([]worker.Recorder, func(), error) {
	var recorders []worker.Recorder
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, func() {}, fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, func() { redisClient.Close() })
		recorders = append(recorders, services.NewStatusService(redisClient, cfg.RedisPrefix))
		log.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis successfully")
	}

	if cfg.DatabaseURL != "" {
		dbSvc, err := services.NewDatabaseService(ctx, cfg.DatabaseURL)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, func() { dbSvc.Close() })
		if err := dbSvc.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, func() {}, err
		}
		recorders = append(recorders, dbSvc)
		log.Info().Msg("Connected to database successfully")
	}

	return recorders, closeAll, nil
}
