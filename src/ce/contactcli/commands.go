package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/foliosite/folio/src/ce/contactform"
	"github.com/foliosite/folio/src/lib/errors"
	"github.com/foliosite/folio/src/lib/utils"
	"github.com/spf13/cobra"
)

type sendFlags struct {
	url     string
	name    string
	email   string
	message string
	timeout time.Duration
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "folio-contact",
		Short:         "Talk to the folio contact api from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(sendCmd())
	return root
}

func sendCmd() *cobra.Command {
	flags := &sendFlags{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit the contact form",
		Example: `  folio-contact send --name Ann --email ann@example.com --message "Hello there, I need a website."
  echo "Hello there" | folio-contact send --name Ann --email ann@example.com --message -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.message == "-" {
				b, err := readAll(cmd)

				if err != nil {
					return err
				}

				flags.message = b
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			return send(ctx, cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.url, "url", utils.GetString(os.Getenv("FOLIO_API_URL"), "http://localhost:8080"), "Base url of the api, defaults to FOLIO_API_URL")
	cmd.Flags().StringVarP(&flags.name, "name", "n", "", "Your name")
	cmd.Flags().StringVarP(&flags.email, "email", "e", "", "Your email address")
	cmd.Flags().StringVarP(&flags.message, "message", "m", "", "What you need, use - to read it from stdin")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 15*time.Second, "Request timeout")

	return cmd
}

func send(ctx context.Context, cmd *cobra.Command, flags *sendFlags) error {
	form := contactform.New(strings.TrimSuffix(flags.url, "/") + contactform.DefaultEndpoint)
	form.Timeout = flags.timeout
	form.Set(contactform.Fields{
		Name:    flags.name,
		Email:   flags.email,
		Message: flags.message,
	})

	err := form.Submit(ctx)

	if err == contactform.ErrInvalid {
		fields := form.Errors()
		keys := make([]string, 0, len(fields))

		for k := range fields {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		for _, k := range keys {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", k, fields[k])
		}

		return err
	}

	if err != nil {
		return errors.New(errors.ErrorTypeExternal, form.Status())
	}

	fmt.Fprintln(cmd.OutOrStdout(), form.Status())
	return nil
}

func readAll(cmd *cobra.Command) (string, error) {
	b, err := io.ReadAll(cmd.InOrStdin())

	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeInternal, "failed to read message from stdin")
	}

	return strings.TrimSpace(string(b)), nil
}
