package app

import (
	"context"
	"fmt"
	"os"

	"github.com/adanyl0v/go-task-tracker/internal/cli"
)

// ExecuteCLI runs the command line against the initialized services
// and returns the process exit code.
func ExecuteCLI() int {
	rootCmd := cli.NewRootCommand(cli.Deps{
		Logger:   globalLogger,
		Sessions: globalSessionService,
		Tasks:    globalTaskService,
		Serve:    MustListenAndServeHTTP,
	})

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
