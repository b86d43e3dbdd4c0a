package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

// asker is the part of the pipeline the terminal commands use.
type asker interface {
	Ask(ctx context.Context, question string) (domain.Answer, error)
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context(), rebuild)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.pipeline.Ask(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("ask: %w", err)
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "\nQ: %s\n\n%s\n", res.Question, res.Answer)
		printCitations(out, res)
		return nil
	},
}

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Ask questions in a loop until quit",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context(), rebuild)
		if err != nil {
			return err
		}
		defer a.Close()

		return runREPL(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a.pipeline)
	},
}

func init() {
	rootCmd.AddCommand(askCmd, interactiveCmd)
}

// runREPL reads one question per line until EOF or quit, exit or q.
// A failed question is reported and the loop continues.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, p asker) error {
	_, _ = fmt.Fprintln(out, "\n=== Interactive Mode (type 'quit' to exit) ===")
	_, _ = fmt.Fprintln(out)

	sc := bufio.NewScanner(in)
	for {
		_, _ = fmt.Fprint(out, "You: ")
		if !sc.Scan() {
			_, _ = fmt.Fprintln(out, "\nGoodbye!")
			return sc.Err()
		}

		question := strings.TrimSpace(sc.Text())
		switch strings.ToLower(question) {
		case "":
			continue
		case "quit", "exit", "q":
			_, _ = fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		res, err := p.Ask(ctx, question)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			_, _ = fmt.Fprintf(out, "\nError: %v\n\n", err)
			continue
		}
		_, _ = fmt.Fprintf(out, "\nAssistant: %s\n", res.Answer)
		printCitations(out, res)
		_, _ = fmt.Fprintln(out)
	}
}

func printCitations(out io.Writer, res domain.Answer) {
	if res.Citations != "" {
		_, _ = fmt.Fprintf(out, "\n%s\n", res.Citations)
	}
}
