package http

import "github.com/spf13/cobra"

// NewHTTPCommand groups the commands that run the web server.
func NewHTTPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the shop website and contact API",
	}

	cmd.AddCommand(NewStartCommand())

	return cmd
}
