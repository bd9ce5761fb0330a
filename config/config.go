package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Model   ModelConfig   `yaml:"model"`
	Chat    ChatConfig    `yaml:"chat"`

	// Secrets, loaded from the environment rather than config.yaml.
	GeminiApiKey string `yaml:"-"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// StaticDir is the directory of the bundled web frontend.
	// Empty disables static file serving.
	StaticDir string `yaml:"static_dir"`

	// AllowedOrigins configures CORS. Empty allows all origins.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type MongoConfig struct {
	URI    string `yaml:"uri"`
	DBName string `yaml:"db_name"`
}

// ModelConfig selects and parameterizes the inference backend.
type ModelConfig struct {
	// Backend is "llama" (local GGUF model) or "gemini".
	Backend string `yaml:"backend"`

	// Name is the GGUF file name under Dir. Downloaded from URL when missing.
	Name string `yaml:"name"`
	Dir  string `yaml:"dir"`
	URL  string `yaml:"url"`

	ContextSize int `yaml:"context_size"`
	GPULayers   int `yaml:"gpu_layers"`

	GeminiModel string `yaml:"gemini_model"`
}

// ChatConfig bounds prompt assembly and generation.
type ChatConfig struct {
	SystemPrompt string `yaml:"system_prompt"`

	// HistoryWindow is the number of most recent messages included in the
	// prompt when building one.
	HistoryWindow int `yaml:"history_window"`

	MaxTokens     int      `yaml:"max_tokens"`
	Temperature   float64  `yaml:"temperature"`
	StopSequences []string `yaml:"stop_sequences"`

	// MaxMessageLength rejects oversized user messages at the HTTP layer.
	MaxMessageLength int `yaml:"max_message_length"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	applyDefaults(&c)
	applyEnv(&c)
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func applyDefaults(c *AppConfig) {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Mongo.DBName == "" {
		c.Mongo.DBName = "llm_chat"
	}
	if c.Model.Backend == "" {
		c.Model.Backend = "llama"
	}
	if c.Model.ContextSize == 0 {
		c.Model.ContextSize = 2048
	}
	if c.Chat.SystemPrompt == "" {
		c.Chat.SystemPrompt = "You are a helpful AI assistant. You provide clear, accurate, and concise responses. You are friendly and professional."
	}
	if c.Chat.HistoryWindow == 0 {
		c.Chat.HistoryWindow = 10
	}
	if c.Chat.MaxTokens == 0 {
		c.Chat.MaxTokens = 512
	}
	if c.Chat.Temperature == 0 {
		c.Chat.Temperature = 0.7
	}
	if len(c.Chat.StopSequences) == 0 {
		c.Chat.StopSequences = []string{"User:", "System:"}
	}
	if c.Chat.MaxMessageLength == 0 {
		c.Chat.MaxMessageLength = 4000
	}
}

func applyEnv(c *AppConfig) {
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiApiKey = v
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
