package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/mind-engage/smarticulous/internal/config"
	"github.com/mind-engage/smarticulous/internal/grading"
	"github.com/mind-engage/smarticulous/internal/observability"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stderr); err != nil {
		l := zerolog.New(os.Stderr)
		l.Error().Err(err).Msg("gradedb failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("gradedb", flag.ContinueOnError)
	fs.SetOutput(stderr)
	seed := fs.Bool("seed", false, "store a demo user, exercise and submissions")
	metricsFile := fs.String("metrics-file", "", "write store metrics in text exposition format to this file on exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
		Level(cfg.LogLevel).
		With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reg := prometheus.NewRegistry()
	store, err := grading.Open(ctx, cfg, logger, grading.WithMetrics(observability.NewMetrics(reg)))
	if err != nil {
		return err
	}
	defer store.Close()

	if *seed {
		if err := seedDemo(ctx, store, logger); err != nil {
			return err
		}
	}

	exercises, err := store.ListExercises(ctx)
	if err != nil {
		return err
	}
	logger.Info().Int("exercises", len(exercises)).Msg("store provisioned")

	if *metricsFile != "" {
		if err := prometheus.WriteToTextfile(*metricsFile, reg); err != nil {
			return err
		}
	}
	return nil
}

func seedDemo(ctx context.Context, store grading.Store, logger zerolog.Logger) error {
	user := grading.User{Username: "demo", Firstname: "Demo", Lastname: "Student"}
	if _, err := store.AddOrUpdateUser(ctx, user, "demo"); err != nil {
		return err
	}

	ex := grading.Exercise{
		ID:      1,
		Name:    "Warm-up",
		DueDate: time.Now().Add(7 * 24 * time.Hour),
		Questions: []grading.Question{
			{Name: "Q1", Desc: "Joins", Points: 40},
			{Name: "Q2", Desc: "Aggregates", Points: 60},
		},
	}
	if _, err := store.AddExercise(ctx, ex); err != nil && !errors.Is(err, grading.ErrDuplicateExercise) {
		return err
	}

	now := time.Now()
	for i, grades := range [][]float64{{35, 50}, {20, 45}} {
		sub := grading.Submission{
			User:           user,
			Exercise:       ex,
			SubmissionTime: now.Add(time.Duration(i) * time.Minute),
			Grades:         grades,
		}
		if _, err := store.StoreSubmission(ctx, sub); err != nil {
			return err
		}
	}

	for _, sel := range []grading.Selection{grading.ByRecency, grading.ByTotalScore} {
		sub, ok, err := store.SelectSubmission(ctx, user, ex, sel)
		if err != nil {
			return err
		}
		if !ok {
			logger.Info().Str("policy", sel.String()).Msg("no submission")
			continue
		}
		logger.Info().
			Str("policy", sel.String()).
			Int64("submission_id", sub.ID).
			Floats64("grades", sub.Grades).
			Float64("total", sub.Total()).
			Msg("selected submission")
	}
	return nil
}
