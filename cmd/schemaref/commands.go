package main

import (
	"fmt"
	"io"

	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/schemaref"
)

func derefCmd(g *globalFlags) *cobra.Command {
	var compact bool
	cmd := &cobra.Command{
		Use:   "deref <schema-file> <ref>",
		Short: "Print the value a $ref resolves to",
		Long: `Resolve <ref> against the location of <schema-file> and print the
target as JSON. <ref> may be a fragment ("#/definitions/a"), a relative
reference ("common.json#/definitions/id") or an absolute URI.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, err := schemaref.OpenFile(args[0], g.options()...)
			if err != nil {
				return err
			}
			v, err := root.Dereference(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), v, !compact)
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "print compact JSON")
	return cmd
}

func refsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "refs <schema-file>",
		Short: "List every $ref in a schema and whether it resolves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, doc, err := schemaref.OpenFile(args[0], g.options()...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			failed := 0
			err = root.WalkRefs(cmd.Context(), doc, func(v schemaref.RefVisit) error {
				pointer := v.Pointer
				if pointer == "" {
					pointer = "/"
				}
				if v.Err != nil {
					failed++
					fmt.Fprintf(out, "%s %s %s %s\n", failColor.Sprint("✗"), pointer, v.Ref, dimColor.Sprint(v.Err.Error()))
					return nil
				}
				fmt.Fprintf(out, "%s %s %s %s\n", okColor.Sprint("✓"), pointer, v.Ref, dimColor.Sprint("-> "+v.Target))
				return nil
			})
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d reference(s) failed to resolve", failed)
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any, indent bool) error {
	var (
		b   []byte
		err error
	)
	if indent {
		b, err = j.MarshalIndent(v, "", "  ")
	} else {
		b, err = j.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
