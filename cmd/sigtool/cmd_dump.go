package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/sigkit/classfile"
	"github.com/dhamidi/sigkit/corpus"
)

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file>",
		Short: "List the signatures stored in a class file, jar, jmod, or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return corpus.Walk(cmd.Context(), args[0], func(e corpus.Entry) error {
				cf, err := classfile.Parse(e.Data)
				if err != nil {
					fmt.Fprintf(os.Stderr, "[ERROR] %s: %v\n", e, err)
					return nil
				}
				sigs := cf.Signatures()
				if len(sigs) == 0 {
					return nil
				}
				fmt.Printf("# %s %s\n", cf.Declaration(), cf.Name)
				for _, s := range sigs {
					where := s.Class
					if s.Member != "" {
						where += "." + s.Member + s.Descriptor
					}
					fmt.Printf("%-6s  %s  %s\n", s.Kind, where, s.Text)
				}
				return nil
			})
		},
	}
}
