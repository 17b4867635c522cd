package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/variant/container"
)

func (a *app) inCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "in <(type,value)>",
		Short:   "Encode a text literal into a container (hex)",
		Example: `  variant in '(int4,42)'` + "\n" + `  variant in '(text,"a,b")'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := a.codec.In(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ct.String())
			return nil
		},
	}
}

func (a *app) outCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "out <hex>",
		Short:   "Decode a container (hex) into its text literal",
		Example: `  variant out 0c000000170000002a000000`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := parseHex(args[0])
			if err != nil {
				return err
			}
			s, err := a.codec.Out(ct)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func (a *app) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <hex | (type,value)>",
		Short: "Show the header fields and payload of a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := a.containerArg(args[0])
			if err != nil {
				return err
			}
			return a.describe(cmd.OutOrStdout(), ct)
		},
	}
}

func (a *app) typesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List registered types and their storage class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-10s %-8s %-8s %6s %5s\n", "ID", "NAME", "CLASS", "LENGTH", "ALIGN")
			for _, t := range a.reg.Types() {
				fmt.Fprintf(w, "%-10d %-8s %-8s %6d %5d\n", t.ID, t.Name, t.Class(), t.Length, t.Align)
			}
			return nil
		},
	}
}

func (a *app) putCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <key> <hex | (type,value)>",
		Short: "Store a container under key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := a.containerArg(args[1])
			if err != nil {
				return err
			}
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Put(cmd.Context(), args[0], ct)
		},
	}
}

func (a *app) getCommand() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Fetch the container stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			ct, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), ct.String())
				return nil
			}
			text, err := a.codec.Out(ct)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "hex", false, "print the container instead of its text form")
	return cmd
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <key>",
		Aliases: []string{"del", "rm"},
		Short:   "Remove key from the store",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Delete(cmd.Context(), args[0])
		},
	}
}

// containerArg accepts either a text literal or a hex container.
func (a *app) containerArg(arg string) (container.Container, error) {
	if strings.HasPrefix(strings.TrimSpace(arg), "(") {
		return a.codec.In(arg)
	}
	return parseHex(arg)
}

func (a *app) describe(w io.Writer, ct container.Container) error {
	l, err := container.Inspect(ct)
	if err != nil {
		return err
	}

	name := "?"
	if n, err := a.codec.TypeName(ct); err == nil {
		name = n
	}
	fmt.Fprintf(w, "total_length  %d\n", l.TotalLength)
	fmt.Fprintf(w, "header        0x%08x\n", l.Word)
	fmt.Fprintf(w, "type          %d (%s)\n", l.Type, name)
	fmt.Fprintf(w, "null          %v\n", l.IsNull())
	if l.HasOverflow() {
		fmt.Fprintf(w, "overflow      0x%02x\n", l.Overflow)
	}
	fmt.Fprintf(w, "payload       %d bytes %s\n", len(l.Payload), hex.EncodeToString(l.Payload))

	if text, err := a.codec.Out(ct); err == nil {
		fmt.Fprintf(w, "text          %s\n", text)
	}
	return nil
}

func parseHex(s string) (container.Container, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), `\x`)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("container is not valid hex: %w", err)
	}
	return b, nil
}
