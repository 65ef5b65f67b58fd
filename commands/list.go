package commands

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mmichie/pipes/pkg/provider"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List pipelines and model backends",
	Args:  cobra.NoArgs,
	RunE:  runListCommand,
}

func InitListCommand(rootCmd *cobra.Command) {
	rootCmd.AddCommand(listCmd)
}

func runListCommand(cmd *cobra.Command, args []string) error {
	reg, err := buildRegistry(zerolog.Nop())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Pipelines:")
	for _, info := range reg.List() {
		fmt.Fprintf(out, "  %-10s %s\n", info.ID, info.Name)
	}

	selected := selectProvider()
	fmt.Fprintln(out, "Backends:")
	for _, name := range provider.List() {
		info, err := provider.Info(name)
		if err != nil {
			return err
		}
		marker := " "
		if name == selected {
			marker = "*"
		}
		line := fmt.Sprintf("%s %-10s models: %s", marker, name, strings.Join(info.Models, ", "))
		if info.IsDefault {
			line += " (default)"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
