package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/skycast/internal/api/http"
	"github.com/i474232898/skycast/internal/config"
	"github.com/i474232898/skycast/internal/logging"
	"github.com/i474232898/skycast/internal/scheduler"
	"github.com/i474232898/skycast/internal/weather"
)

var (
	verbose bool
	jsonOut bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "skycast",
		Short: "SkyCast weather dashboard",
		Long:  "Weather dashboard backend: city search, geolocation, forecasts, air quality and tips",
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print JSON instead of text")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(tipsCmd())
	rootCmd.AddCommand(moonCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*config.AppConfig, *zap.SugaredLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log := logging.New(level, "skycast")
	if !cfg.EnvFileLoaded {
		log.Debug("no .env file found; using environment only")
	}
	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Start the HTTP API and the background cache warm-up",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := buildService(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer d.Close()

			sched := scheduler.New(cfg.PrefetchCities, cfg.PrefetchInterval, d.service, log)
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer sched.Stop()

			app := httpapi.NewApp(d.service, log, true)

			go func() {
				log.Infow("listening", "port", cfg.Port)
				if err := app.Listen(":" + cfg.Port); err != nil {
					log.Errorw("fiber server stopped", "error", err)
					stop()
				}
			}()

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				log.Errorw("error during shutdown", "error", err)
			}
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	var profile, unitFlag string

	cmd := &cobra.Command{
		Use:   "search <city>",
		Short: "Search a city and print its dashboard",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			d, err := buildService(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer d.Close()

			if unitFlag != "" {
				unit, err := weather.ParseUnit(unitFlag)
				if err != nil {
					return err
				}
				if _, err := d.service.SetUnit(ctx, profile, unit); err != nil {
					return err
				}
			}

			res, err := d.service.Search(ctx, profile, strings.Join(args, " "))
			if err != nil {
				return err
			}

			dash := weather.BuildDashboard(res.Snapshot, res.Settings, time.Now())
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), dash)
			}
			printDashboard(cmd.OutOrStdout(), dash)
			return nil
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "cli", "settings profile")
	cmd.Flags().StringVarP(&unitFlag, "unit", "u", "", "store and use this unit (celsius|fahrenheit)")
	return cmd
}

func tipsCmd() *cobra.Command {
	var c weather.CurrentConditions

	cmd := &cobra.Command{
		Use:   "tips",
		Short: "Print the tips for given conditions",
		RunE: func(cmd *cobra.Command, args []string) error {
			tips := weather.GenerateTips(c)
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), tips)
			}
			if len(tips) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No advisories.")
				return nil
			}
			for _, t := range tips {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", t.Category, t.Message)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&c.Temperature, "temp", 20, "temperature in °C")
	cmd.Flags().Float64Var(&c.Humidity, "humidity", 50, "relative humidity in %")
	cmd.Flags().Float64Var(&c.WindSpeed, "wind", 0, "wind speed in km/h")
	cmd.Flags().IntVar(&c.WeatherCode, "code", 0, "WMO weather code")
	return cmd
}

func moonCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "moon",
		Short: "Print the moon phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			at := time.Now()
			if date != "" {
				parsed, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				at = parsed.Add(12 * time.Hour)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", at.Format("2006-01-02"), weather.CalculateMoonPhase(at))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to compute (YYYY-MM-DD), default now")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printDashboard(w io.Writer, d weather.Dashboard) {
	fmt.Fprintf(w, "%s, %s\n", d.Location.Name, d.Location.Country)
	fmt.Fprintf(w, "  %s  %s (feels like %s)\n", d.Current.Temperature, d.Current.Label, d.Current.FeelsLike)
	fmt.Fprintf(w, "  Humidity %.0f%%  Wind %.0f km/h\n", d.Current.Humidity, d.Current.WindSpeed)
	fmt.Fprintf(w, "  Air quality %s (%d)  UV %s (%.1f)\n", d.AirQuality.Label, d.AirQuality.Value, d.UV.Label, d.UV.Value)
	fmt.Fprintf(w, "  %s  Moon: %s\n", d.Celestial.Status, d.Celestial.MoonPhase)

	if len(d.Tips) > 0 {
		fmt.Fprintln(w, "Tips:")
		for _, t := range d.Tips {
			fmt.Fprintf(w, "  - %s\n", t.Message)
		}
	}

	fmt.Fprintln(w, "Outlook:")
	for _, day := range d.Daily {
		fmt.Fprintf(w, "  %-6s %-14s %5s / %-5s rain %d%%\n", day.Day, day.Label, day.Max, day.Min, day.PrecipitationProbability)
	}
}
