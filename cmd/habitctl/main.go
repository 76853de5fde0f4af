package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"habitflow/internal/app"
	"habitflow/internal/config"
	"habitflow/internal/db"
	"habitflow/internal/logger"
	"habitflow/internal/services"
)

// Context is passed to every command's Run method.
type Context struct {
	Config config.Config
	Log    *zap.Logger
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	conn, err := db.Open(ctx.Config.DatabaseURL, ctx.Config.SQLitePath)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.RunMigrations(conn); err != nil {
		return err
	}
	ctx.Log.Info("migrations applied", zap.String("driver", conn.DriverName()))
	return nil
}

type RunCmd struct {
	Job string `arg:"" enum:"soulfuel,reminders,analytics" help:"Job to run (soulfuel, reminders, analytics)."`
}

func (c *RunCmd) Run(ctx *Context) error {
	a, err := app.New(ctx.Config, ctx.Log)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.Scheduler.RunNow(context.Background(), c.Job)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

type JobsCmd struct{}

func (c *JobsCmd) Run(ctx *Context) error {
	rows := [][2]string{
		{services.JobAnalytics, ctx.Config.AnalyticsSchedule},
		{services.JobReminders, ctx.Config.ReminderSchedule},
		{services.JobSoulFuel, ctx.Config.SoulFuelSchedule},
	}
	for _, row := range rows {
		fmt.Printf("%-10s %s (%s)\n", row[0], row[1], ctx.Config.Timezone)
	}
	return nil
}

var CLI struct {
	Migrate MigrateCmd `cmd:"" help:"Apply the database schema."`
	Run     RunCmd     `cmd:"" help:"Run one daily job immediately and print its report."`
	Jobs    JobsCmd    `cmd:"" help:"List configured job schedules."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("habitctl"),
		kong.Description("Operational commands for the habitflow backend"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := kctx.Run(&Context{Config: cfg, Log: log}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
