package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/sigkit/format"
	"github.com/dhamidi/sigkit/sig"
)

func newParseCmd() *cobra.Command {
	var kindName string

	cmd := &cobra.Command{
		Use:   "parse <signature>",
		Short: "Parse a signature and print its tree as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := sig.ParseKind(kindName)
			if !ok {
				return fmt.Errorf("unknown kind: %s (expected class, field, or method)", kindName)
			}
			node, err := sig.Parse(args[0], kind, sig.WithMaxDepth(current.MaxDepth))
			if err != nil {
				return err
			}
			if err := format.NewSignatureJSONEncoder(os.Stdout).Encode(node); err != nil {
				return fmt.Errorf("encode json: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindName, "kind", "k", "field", "signature kind (class, field, method)")

	return cmd
}
