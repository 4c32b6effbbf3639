package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/sigkit/format"
	"github.com/dhamidi/sigkit/sig"
)

func newWriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write [file|-]",
		Short: "Read a signature tree as JSON and print the signature string",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			node, err := format.DecodeSignatureJSON(data)
			if err != nil {
				return err
			}
			fmt.Println(sig.Write(node))
			return nil
		},
	}
}
