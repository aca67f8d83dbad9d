package cmd

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "resume-reviewer"
)

type Config struct {
	AI     *AIConfig     `mapstructure:"ai"`
	Server *ServerConfig `mapstructure:"server"`
	Review *ReviewConfig `mapstructure:"review"`
}

type AIConfig struct {
	Provider     string        `mapstructure:"provider"`
	Temperature  float32       `mapstructure:"temperature"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	JSONMode     bool          `mapstructure:"json-mode"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
	OpenAI       *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type OpenAIConfig struct {
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	BaseURL    string `mapstructure:"base-url"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors-origins"`
}

type ReviewConfig struct {
	ResumeFile string `mapstructure:"resume-file"`
	JobFile    string `mapstructure:"job-file"`
	OutputFile string `mapstructure:"output-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-reviewer scores a resume against a job description with an LLM",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults(viper.GetViper())

	envs := map[string]string{
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"ai.openai.api-key-file": "OPENAI_API_KEY_FILE",
		"port":                   "PORT",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-reviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", providerGemini)
	v.SetDefault("ai.temperature", 0)
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.json-mode", false)
	v.SetDefault("ai.gemini.model", "gemini-2.5-pro")
	v.SetDefault("ai.openai.model", "gpt-4-turbo")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("review.resume-file", "resume.txt")
	v.SetDefault("review.job-file", "jd.txt")
	v.SetDefault("review.output-file", "result.json")
}

func initConfig() {
	// .env is optional, anything else is a real error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		// We can't proceed if the config file parsed with error.
		log.Fatal(err)
	}
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.AI.OpenAI == nil {
		config.AI.OpenAI = &OpenAIConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Review == nil {
		config.Review = &ReviewConfig{}
	}

	return config, nil
}

// listenAddr resolves the HTTP address. PORT only applies when neither --addr
// nor server.addr in the config file was given.
func listenAddr(v *viper.Viper, addrFlagSet bool) string {
	addr := v.GetString("server.addr")
	if addrFlagSet || v.InConfig("server.addr") {
		return addr
	}
	if port := v.GetString("port"); port != "" {
		return ":" + port
	}
	return addr
}
