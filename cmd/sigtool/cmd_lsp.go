package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/sigkit/lsp"
	"github.com/dhamidi/sigkit/sig"
)

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server for .sigs files",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.NewServer(version, sig.WithMaxDepth(current.MaxDepth))
			return server.RunStdio()
		},
	}
}
