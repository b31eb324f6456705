package website

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sciclub/clubsite/src/auth"
	"github.com/sciclub/clubsite/src/config"
	"github.com/sciclub/clubsite/src/db"
	"github.com/sciclub/clubsite/src/jobs"
	"github.com/sciclub/clubsite/src/logging"
	"github.com/sciclub/clubsite/src/perf"
	"github.com/sciclub/clubsite/src/templates"
	"github.com/spf13/cobra"
)

var WebsiteCommand = &cobra.Command{
	Use:   "clubsite",
	Short: "Run the club website",
	Run: func(cmd *cobra.Command, args []string) {
		logging.Info().Str("club", config.Config.ClubName).Msg("Starting the website")

		templates.Init()

		var wg sync.WaitGroup

		conn := db.NewConnPool()
		defer conn.Close()

		perfCollectorJob := jobs.New("perf collector")
		perfCollector := perf.RunPerfCollector(perfCollectorJob.Ctx)
		go func() {
			defer logging.LogPanics(nil)
			<-perfCollector.Done
			perfCollectorJob.Finish()
		}()

		// Start background jobs
		wg.Add(1)
		backgroundJobs := jobs.Jobs{
			auth.PeriodicallyDeleteExpiredSessions(conn),
			perfCollectorJob,
		}

		// Create HTTP server
		wg.Add(1)
		server := http.Server{
			Addr:              config.Config.Addr,
			Handler:           NewWebsiteRoutes(conn, perfCollector),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logging.Info().Str("addr", config.Config.Addr).Msg("Serving the website")
			serverErr := server.ListenAndServe()
			if !errors.Is(serverErr, http.ErrServerClosed) {
				logging.Error().Err(serverErr).Msg("Server shut down unexpectedly")
			}
			// The wg.Done() happens in the shutdown logic below.
		}()

		// Wait for SIGINT in the background and trigger graceful shutdown
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		go func() {
			defer logging.LogPanics(nil)
			<-signals // First signal (start shutdown)
			logging.Info().Msg("Shutting down the website")

			const timeout = 10 * time.Second

			go func() {
				defer wg.Done()
				defer logging.LogPanics(nil)
				logging.Info().Msg("Shutting down background jobs...")
				unfinished := backgroundJobs.CancelAndWait(timeout)
				if len(unfinished) == 0 {
					logging.Info().Msg("Background jobs closed gracefully")
				} else {
					logging.Warn().Strs("Unfinished", unfinished).Msg("Background jobs did not finish by the deadline")
				}
			}()

			// Gracefully shut down the HTTP server
			go func() {
				defer wg.Done()
				defer logging.LogPanics(nil)
				timeoutCtx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				err := server.Shutdown(timeoutCtx)
				if err != nil {
					logging.Warn().Err(err).Msg("Server did not shut down gracefully")
				}
			}()

			<-signals // Second signal (force quit)
			logging.Warn().Strs("Unfinished background jobs", backgroundJobs.ListUnfinished()).Msg("Forcibly killed the website")
			os.Exit(1)
		}()

		// Wait for all of the above to finish, then exit
		wg.Wait()
	},
}
