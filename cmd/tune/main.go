package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/officeshinyujun/libet/actor"
	"github.com/officeshinyujun/libet/config"
	"github.com/officeshinyujun/libet/movement"
)

// evalRow is one line of tune_log.csv.
type evalRow struct {
	Eval         int     `csv:"eval"`
	Loss         float64 `csv:"loss"`
	Acceleration float64 `csv:"acceleration"`
	Deceleration float64 `csv:"deceleration"`
	Rise         float64 `csv:"rise_s"`
	Fall         float64 `csv:"fall_s"`
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	rise := flag.Float64("rise", 0.25, "Target seconds from rest to 90% of full speed")
	fall := flag.Float64("fall", 0.15, "Target seconds from full speed to 10% after release")
	speed := flag.Float64("speed", actor.DefaultSpeed, "Character speed used for the response runs")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	maxTicks := flag.Int("max-ticks", 600, "Ticks simulated per response run before giving up")
	outputDir := flag.String("output", "", "Output directory for the evaluation log and best config (empty = print only)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(*configPath, Response{Rise: *rise, Fall: *fall}, *speed, *maxEvals, *maxTicks, *outputDir); err != nil {
		slog.Error("tune failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, target Response, speed float64, maxEvals, maxTicks int, outputDir string) error {
	if target.Rise <= 0 || target.Fall <= 0 {
		return fmt.Errorf("targets must be positive, got rise=%v fall=%v", target.Rise, target.Fall)
	}
	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()

	params := NewParamVector(cfg)
	evaluator := NewEvaluator(params, target, speed, cfg.Physics.FixedDT, maxTicks)

	var rows []evalRow
	best := evalRow{Loss: 1e18}
	start := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			loss := evaluator.Evaluate(raw)
			clamped := params.Clamp(raw)
			r := evaluator.Last()

			row := evalRow{
				Eval:         len(rows) + 1,
				Loss:         loss,
				Acceleration: clamped[0],
				Deceleration: clamped[1],
				Rise:         r.Rise,
				Fall:         r.Fall,
			}
			rows = append(rows, row)
			if loss < best.Loss {
				best = row
			}
			return loss
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
	}
	method := &optimize.NelderMead{
		SimplexSize: 0.1,
	}

	slog.Info("starting Nelder-Mead",
		"target_rise", target.Rise,
		"target_fall", target.Fall,
		"speed", speed,
		"dt", cfg.Physics.FixedDT,
		"max_evals", maxEvals,
	)

	if _, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method); err != nil {
		// Hitting the evaluation cap ends the search; the best point so far still counts.
		slog.Warn("optimization ended", "error", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no evaluations ran")
	}

	fmt.Printf("Best after %d evaluations in %s (loss %.6f)\n", len(rows), time.Since(start).Round(time.Millisecond), best.Loss)
	fmt.Printf("  acceleration: %.4f\n", best.Acceleration)
	fmt.Printf("  deceleration: %.4f\n", best.Deceleration)

	check := MeasureResponse(movement.Inertial{Acceleration: best.Acceleration, Deceleration: best.Deceleration}, speed, cfg.Physics.FixedDT, maxTicks)
	fmt.Printf("  rise: %.3fs (target %.3fs)\n", check.Rise, target.Rise)
	fmt.Printf("  fall: %.3fs (target %.3fs)\n", check.Fall, target.Fall)

	if outputDir == "" {
		return nil
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	logFile, err := os.Create(filepath.Join(outputDir, "tune_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()
	if err := gocsv.MarshalFile(&rows, logFile); err != nil {
		return fmt.Errorf("writing log file: %w", err)
	}

	bestCfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	params.ApplyToConfig(bestCfg, []float64{best.Acceleration, best.Deceleration})
	configOutPath := filepath.Join(outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		return err
	}
	fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	return nil
}
