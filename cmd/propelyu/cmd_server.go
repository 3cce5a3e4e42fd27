package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/propelyu/config"
	"github.com/shashiranjanraj/propelyu/internal/kernel"
	"github.com/shashiranjanraj/propelyu/internal/server"
	"github.com/shashiranjanraj/propelyu/pkg/logger"
)

var portFlag string

// boot builds the application. The caller must shutdown.
func boot(ctx context.Context) (*kernel.Kernel, error) {
	return kernel.Boot(ctx)
}

func shutdown(k *kernel.Kernel) {
	ctx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer cancel()
	if err := k.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

// propelyu serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := boot(ctx)
		if err != nil {
			return err
		}
		defer shutdown(k)

		k.Start()

		port := portFlag
		if port == "" {
			port = config.AppPort()
		}
		return server.ListenAndServe(ctx, ":"+port, k.Handler())
	},
}

// propelyu route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.Set("DB_DRIVER", "memory")
		config.Set("CACHE_DRIVER", "memory")
		config.Set("MODEL_RETRAIN_CRON", "")

		k, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer shutdown(k)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range k.NewRouter(nil).Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

// propelyu schedule:list
var scheduleListCmd = &cobra.Command{
	Use:   "schedule:list",
	Short: "List scheduled jobs from MODEL_RETRAIN_CRON",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.Set("DB_DRIVER", "memory")
		config.Set("CACHE_DRIVER", "memory")

		k, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer shutdown(k)

		jobs := k.Scheduler.List()
		if len(jobs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No scheduled jobs. Set MODEL_RETRAIN_CRON to enable retraining.")
			return nil
		}
		for _, j := range jobs {
			fmt.Fprintln(cmd.OutOrStdout(), j)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&portFlag, "port", "p", "", "Port to listen on (default APP_PORT)")
}
