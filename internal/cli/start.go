package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neoclaw-ai/agentroute/internal/logging"
	"github.com/spf13/cobra"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the agents and scheduled deliveries until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			logging.Logger().Info(
				"starting runtime",
				"agents", a.rt.Agents(),
				"schedule", len(a.cfg.EnabledSchedule()),
				"home_dir", a.cfg.HomeDir,
			)

			pidFilePath := a.cfg.PIDPath()
			if err := os.WriteFile(pidFilePath, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644); err != nil {
				return fmt.Errorf("write pid file %q: %w", pidFilePath, err)
			}
			defer func() {
				os.Remove(pidFilePath)
			}()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stopRuntime, err := a.start(runCtx)
			if err != nil {
				return err
			}

			service := a.schedulerService()
			if err := service.Start(runCtx); err != nil {
				stopRuntime()
				return err
			}

			<-runCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			stopErr := service.Stop(shutdownCtx)
			stopRuntime()
			if stopErr != nil {
				return stopErr
			}
			logging.Logger().Info("runtime stopped")
			return nil
		},
	}
}
