// File: cmd/smoke.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/chatdriver/internal/observability"
	"github.com/xkilldash9x/chatdriver/pkg/harness"
	"github.com/xkilldash9x/chatdriver/pkg/session"
)

// tailLines caps how much captured browser output a failed smoke run prints.
const tailLines = 20

// newSmokeCmd creates and configures the `smoke` command. It launches a single
// browser session against the configured display URL and waits for a selector
// to become visible, which verifies the deployment is alive end to end.
func newSmokeCmd() *cobra.Command {
	smokeCmd := &cobra.Command{
		Use:   "smoke",
		Short: "Runs a single-session liveness check against the configured client",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			selector := viper.GetString("selector")
			username := viper.GetString("username")

			runner := harness.NewRunner(cfg, logger, harness.ChromeLauncher(cfg, logger))

			err := runner.WithSession(ctx, username, func(ctx context.Context, d harness.Driver) error {
				if err := d.Goto(ctx, d.URL("/")); err != nil {
					return fmt.Errorf("failed to open client: %w", err)
				}
				if _, err := d.WaitAndQuery(ctx, selector); err != nil {
					dumpCapturedLogs(d, logger)
					return fmt.Errorf("client never became ready: %w", err)
				}
				return nil
			})
			if err != nil {
				logger.Error("Smoke check failed", zap.Error(err))
				return err
			}

			logger.Info("Smoke check passed",
				zap.String("username", username),
				zap.String("selector", selector),
			)
			fmt.Println("OK")
			return nil
		},
	}

	smokeCmd.Flags().String("selector", "body", "CSS selector that must become visible for the check to pass")
	smokeCmd.Flags().String("username", "smoke", "Username tag for the session's log lines")

	return smokeCmd
}

// dumpCapturedLogs prints the tail of the session's console and network
// capture so a failed check leaves something actionable behind.
func dumpCapturedLogs(d harness.Driver, logger *zap.Logger) {
	for _, buf := range []*session.LogBuffer{d.ConsoleLog(), d.NetworkLog()} {
		if buf == nil {
			continue
		}
		entries := buf.Entries()
		if len(entries) > tailLines {
			entries = entries[len(entries)-tailLines:]
		}
		for _, line := range entries {
			logger.Info("Captured browser output",
				zap.String("event", buf.Event()),
				zap.String("line", line),
			)
		}
	}
}
