package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmichie/pipes/pkg/pipeline"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Send one question through a pipeline",
	Long: `Start a single pipeline, send it one question and print the answer.
The question is read from stdin when no argument is given.`,
	RunE: runAskCommand,
}

func InitAskCommand(rootCmd *cobra.Command) {
	askCmd.Flags().StringP("pipeline", "p", pipeline.LangchainID, "pipeline to ask")
	rootCmd.AddCommand(askCmd)
}

func runAskCommand(cmd *cobra.Command, args []string) error {
	input, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if err := checkEmptyInput(input); err != nil {
		return err
	}

	id, _ := cmd.Flags().GetString("pipeline")
	reg, err := buildRegistry(newLogger(os.Stderr))
	if err != nil {
		return err
	}
	p, err := reg.Get(id)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := p.Startup(ctx); err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}
	defer func() { _ = p.Shutdown(ctx) }()

	answer, err := p.Pipe(ctx, pipeline.Request{UserMessage: input, ModelID: id})
	if err != nil {
		return fmt.Errorf("error processing question: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
