package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the routing file and hot-reload on change",
		Long: `Watch the configured routing file and republish the rules and routing
table whenever it changes. Invalid updates are rejected and the previous
configuration stays live. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch()
		},
	}

	return cmd
}

func runWatch() error {
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}
	formatter := GetFormatter()
	path := container.Config().RoutingFile

	if err := container.StartWatching(); err != nil {
		return fmt.Errorf("failed to start watching: %w", err)
	}
	defer container.StopWatching()

	formatter.Info("Watching %s (Ctrl-C to stop)", path)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	formatter.Println("")
	formatter.Info("Stopped watching")
	return nil
}
