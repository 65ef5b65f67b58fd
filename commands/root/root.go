package root

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmichie/pipes/commands"
)

const (
	DefaultListenAddr    = ":9099"
	DefaultProvider      = "ollama"
	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultLogLevel      = "info"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile  string
	provider string
	verbose  bool
)

// RootCmd is the root command for pipes
var RootCmd = &cobra.Command{
	Use:   "pipes",
	Short: "pipes hosts single-turn prompt pipelines",
	Long: `pipes runs prompt pipelines that forward a question through a fixed
prompt template to a language model and return the answer. Pipelines are
served over an OpenAI-compatible HTTP API or asked directly from the shell.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if provider != "" {
			viper.Set("provider", provider)
		}
		if verbose {
			viper.Set("log_level", "debug")
		}
	},
}

func Execute() error {
	return RootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pipes.yaml)")
	RootCmd.PersistentFlags().StringVar(&provider, "provider", "", "model backend (ollama, openai, anthropic or gemini)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	setDefaults()

	commands.InitServeCommand(RootCmd)
	commands.InitAskCommand(RootCmd)
	commands.InitListCommand(RootCmd)

	RootCmd.AddCommand(versionCmd)
}

func setDefaults() {
	viper.SetDefault("listen_addr", DefaultListenAddr)
	viper.SetDefault("provider", DefaultProvider)
	viper.SetDefault("ollama_base_url", DefaultOllamaBaseURL)
	viper.SetDefault("log_level", DefaultLogLevel)

	// Bind the conventional unprefixed variables as well
	_ = viper.BindEnv("openai_api_key", "PIPES_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = viper.BindEnv("anthropic_api_key", "PIPES_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = viper.BindEnv("gemini_api_key", "PIPES_GEMINI_API_KEY", "GEMINI_API_KEY")
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pipes")
	}

	viper.SetEnvPrefix("pipes")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pipes",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "pipes", Version)
	},
}
