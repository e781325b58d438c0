package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/jmgilman/go/boundary/device"
	"github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/section"
	"github.com/spf13/cobra"
)

// exactArgs is cobra.ExactArgs with a translated failure.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.Newf(errors.KindInvalidArgument, cmd.Name(), "expected %d argument(s), got %d", n, len(args))
		}
		return nil
	}
}

func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return errors.Newf(errors.KindInvalidArgument, cmd.Name(), "expected at least %d argument(s), got %d", n, len(args))
		}
		return nil
	}
}

func (a *app) store(ctx context.Context) (*section.Store, error) {
	return a.cfg.Store(ctx, section.WithSink(a.sink))
}

func (a *app) port() (*device.Port, error) {
	return a.cfg.Port(device.WithSink(a.sink))
}

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List section names",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := a.store(ctx)
			if err != nil {
				return err
			}

			names, err := retrying(ctx, a, func(ctx context.Context) ([]string, error) {
				return store.ListSections(ctx)
			})
			if err != nil {
				return err
			}

			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func (a *app) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>...",
		Short: "Print the content of one or more sections",
		Args:  minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.store(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				sec, err := retrying(ctx, a, func(ctx context.Context) (section.Section, error) {
					return store.RetrieveSection(ctx, args[0])
				})
				if err != nil {
					return err
				}
				_, err = out.Write(sec.Content)
				return err
			}

			secs, err := retrying(ctx, a, func(ctx context.Context) ([]section.Section, error) {
				return store.RetrieveSections(ctx, args...)
			})
			if err != nil {
				return err
			}
			for _, sec := range secs {
				fmt.Fprintf(out, "==> %s <==\n", sec.Name)
				if _, err := out.Write(sec.Content); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func (a *app) putCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <name> <file|->",
		Short: "Store a section from a file or standard input",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			content, err := a.readInput(args[1])
			if err != nil {
				return err
			}

			store, err := a.store(ctx)
			if err != nil {
				return err
			}

			_, err = retrying(ctx, a, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, store.StoreSection(ctx, section.Section{Name: args[0], Content: content})
			})
			return err
		},
	}
}

func (a *app) rmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a section",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.store(ctx)
			if err != nil {
				return err
			}

			_, err = retrying(ctx, a, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, store.RemoveSection(ctx, args[0])
			})
			return err
		},
	}
}

func (a *app) exchangeCommand() *cobra.Command {
	var (
		useHex bool
		crlf   bool
	)

	cmd := &cobra.Command{
		Use:   "exchange <payload>",
		Short: "Send one request to the configured device and print the response",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			request := []byte(args[0])
			if useHex {
				decoded, err := hex.DecodeString(args[0])
				if err != nil {
					return errors.Wrap(err, errors.KindInvalidArgument, device.OpExchange, "payload is not valid hex")
				}
				request = decoded
			}
			if crlf {
				request = append(request, '\r', '\n')
			}

			port, err := a.port()
			if err != nil {
				return err
			}

			resp, err := retrying(ctx, a, func(ctx context.Context) ([]byte, error) {
				return port.Exchange(ctx, request)
			})
			if err != nil {
				return err
			}

			if useHex {
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(resp))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(resp))
			return nil
		},
	}

	cmd.Flags().BoolVar(&useHex, "hex", false, "payload and response are hex encoded")
	cmd.Flags().BoolVar(&crlf, "crlf", false, "terminate the request with CR LF")
	return cmd
}

func (a *app) discoverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "List reachable devices for the configured driver",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			port, err := a.port()
			if err != nil {
				return err
			}

			addrs, err := port.Discover(cmd.Context())
			if err != nil {
				return err
			}
			for _, addr := range addrs {
				fmt.Fprintln(cmd.OutOrStdout(), addr)
			}
			return nil
		},
	}
}

func (a *app) readInput(arg string) ([]byte, error) {
	if arg == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, errors.Wrap(err, errors.KindInternal, "readInput", "failed to read standard input")
		}
		return data, nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, errors.WithContext(errors.Translate("readInput", err, section.FileRules...), "path", arg)
	}
	return data, nil
}
