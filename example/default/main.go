package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	atlasportal "github.com/bridgeworld/atlas-portal"
	"github.com/bridgeworld/atlas-portal/handler"
	"github.com/bridgeworld/atlas-portal/llm"
	"github.com/bridgeworld/atlas-portal/search"
	"github.com/bridgeworld/atlas-portal/storage"
	"github.com/philippgille/chromem-go"
	"gopkg.in/yaml.v2"
)

type config struct {
	BraveAPIKey string `yaml:"brave_api_key"`

	Neo4JURI      string `yaml:"neo4j_uri"`
	Neo4JUser     string `yaml:"neo4j_user"`
	Neo4JPassword string `yaml:"neo4j_password"`

	LLMType string `yaml:"llm_type"`

	OpenAIAPIKey string `yaml:"openai_api_key"`
	OpenAIModel  string `yaml:"openai_model"`

	OllamaHost  string `yaml:"ollama_host"`
	OllamaModel string `yaml:"ollama_model"`

	LoreDir string `yaml:"lore_dir"`

	LogLevel string `yaml:"log_level"`
}

type storageWrapper struct {
	storage.Bolt
	storage.Chromem
	storage.Neo4J
}

const configPath = "config.yaml"

func main() {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		return
	}

	logLevel := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	graphDB, err := storage.NewNeo4J(cfg.Neo4JURI, cfg.Neo4JUser, cfg.Neo4JPassword)
	if err != nil {
		fmt.Printf("Error creating neo4jDB: %v\n", err)
		return
	}

	vecDB, err := storage.NewChromem("vec.db", 5,
		chromem.NewEmbeddingFuncOpenAI(cfg.OpenAIAPIKey, chromem.EmbeddingModelOpenAI3Large))
	if err != nil {
		fmt.Printf("Error creating chromemDB: %v\n", err)
		return
	}

	kvDB, err := storage.NewBolt("kv.db")
	if err != nil {
		fmt.Printf("Error creating boltDB: %v\n", err)
		return
	}

	store := storageWrapper{
		Bolt:    kvDB,
		Chromem: vecDB,
		Neo4J:   graphDB,
	}

	defaultHandler := handler.Default{
		SearchResultLimit: 5,
	}

	if cfg.LoreDir != "" {
		if err := atlasportal.IndexLore(cfg.LoreDir, defaultHandler, store, logger); err != nil {
			fmt.Printf("Error indexing lore: %v\n", err)
			return
		}
	}

	var searcher atlasportal.Searcher
	if cfg.BraveAPIKey != "" {
		searcher = search.NewBrave(cfg.BraveAPIKey, search.Parameters{}, logger)
	} else {
		// No web search configured, fall back to the local lore index.
		searcher = search.NewLocal(vecDB, logger)
	}

	report, err := atlasportal.Resolve(atlasportal.DefaultMissingPieces,
		defaultHandler, searcher, store, logger)
	if err != nil {
		fmt.Printf("Error resolving pieces: %v\n", err)
		return
	}

	assembly := atlasportal.Assemble(report.Pieces)

	fmt.Printf("Assembly complete: %v\n", assembly.Complete)
	if !assembly.Complete {
		fmt.Println("Still missing:")
		for _, name := range assembly.Missing {
			fmt.Printf("  - %s\n", name)
		}
	}

	code, err := atlasportal.IntegrationCode(assembly)
	if err != nil {
		fmt.Printf("Error generating integration code: %v\n", err)
		return
	}
	fmt.Println(code)

	var chatLLM atlasportal.LLM
	switch cfg.LLMType {
	case "openai":
		chatLLM = llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, llm.Parameters{}, logger)
	case "ollama":
		ollamaLLM, err := llm.NewOllama(cfg.OllamaHost, cfg.OllamaModel, llm.Parameters{}, logger)
		if err != nil {
			fmt.Printf("Error creating ollama client: %v\n", err)
			return
		}
		chatLLM = ollamaLLM
	default:
		// Without a chat backend the guardian chat echoes the rendered prompt.
		chatLLM = llm.NewEcho()
	}

	chatLoop(chatLLM)
}

func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &cfg, nil
}

func chatLoop(chatLLM atlasportal.LLM) {
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Println("Guardian path and message, separated by a colon (type 'exit' to exit):")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Printf("Error reading input: %v\n", err)
			return
		}
		line = strings.TrimSpace(line)

		if line == "exit" {
			fmt.Println("Exiting...")
			return
		}

		path := 0
		message := line
		if before, after, found := strings.Cut(line, ":"); found {
			if p, err := strconv.Atoi(strings.TrimSpace(before)); err == nil {
				path = p
				message = strings.TrimSpace(after)
			}
		}

		response, err := atlasportal.GuardianChat(chatLLM, path, message)
		if err != nil {
			fmt.Printf("Error calling chat: %v\n", err)
			return
		}

		fmt.Println("\nGuardian:")
		fmt.Println(response)
		fmt.Println()
	}
}
