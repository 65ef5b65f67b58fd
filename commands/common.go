package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/mmichie/pipes/pkg/config"
	"github.com/mmichie/pipes/pkg/pipeline"
	"github.com/mmichie/pipes/pkg/provider"
)

// selectProvider returns the backend the step-by-step pipeline is bound to
func selectProvider() string {
	if name := viper.GetString("provider"); name != "" {
		return name
	}

	def, err := provider.GetDefault()
	if err != nil {
		return "ollama"
	}
	return def.Name()
}

// providerConfig builds the backend configuration for name. Sampling settings
// come from PIPES_<NAME>_* variables; endpoint and key come from viper.
func providerConfig(name string) config.Config {
	cfg := config.FromEnvironment("PIPES_" + strings.ToUpper(name))
	// The pipeline model is fixed per backend.
	cfg.Model = ""

	switch name {
	case "ollama":
		return cfg.Merge(config.Config{BaseURL: viper.GetString("ollama_base_url")})
	default:
		return cfg.Merge(config.Config{APIKey: viper.GetString(name + "_api_key")})
	}
}

// buildRegistry registers the builtin pipelines on the configured backend
func buildRegistry(logger zerolog.Logger) (*pipeline.Registry, error) {
	name := selectProvider()
	reg := pipeline.NewRegistry()
	if err := pipeline.RegisterBuiltins(reg, name, providerConfig(name), pipeline.WithLogger(logger)); err != nil {
		return nil, fmt.Errorf("failed to register pipelines: %w", err)
	}
	return reg, nil
}

// newLogger writes human-readable logs to terminals and JSON otherwise
func newLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(viper.GetString("log_level"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// readInput reads input from args or, when stdin is not a terminal, from stdin
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("error reading from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// checkEmptyInput rejects an empty question
func checkEmptyInput(input string) error {
	if input == "" {
		return fmt.Errorf("no input provided")
	}
	return nil
}
