package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/quaesitor-ai/quaesitor/internal/app"
	"github.com/quaesitor-ai/quaesitor/internal/common"
	"github.com/quaesitor-ai/quaesitor/internal/server"
	"github.com/quaesitor-ai/quaesitor/internal/services/pipeline"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP  = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
	queryText    = flag.String("query", "", "Answer a single query and exit")
	batchFile    = flag.String("batch", "", "Answer queries from a YAML file and exit")
	runIngest    = flag.Bool("ingest", false, "Ingest the corpus directory and exit")
	corpusDir    = flag.String("corpus", "", "Corpus directory (overrides config)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	// Register custom flag for multiple config files
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	common.InstallCrashHandler("./logs")
	defer common.RecoverWithCrashFile()

	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Quaesitor version %s\n", common.LoadVersionFromFile())
		os.Exit(0)
	}

	// Merge port flags (shorthand takes precedence)
	finalPort := *serverPort
	if *serverPortP != 0 {
		finalPort = *serverPortP
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("quaesitor.toml"); err == nil {
			configFiles = append(configFiles, "quaesitor.toml")
		}
	}

	// 1. Load configuration (default -> file1 -> file2 -> ... -> env -> CLI)
	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	// 2. Apply command-line flag overrides (highest priority)
	common.ApplyFlagOverrides(config, finalPort, *serverHost)
	if *corpusDir != "" {
		config.Corpus.Dir = *corpusDir
	}

	// 3. Initialize logger with final configuration
	logger = common.InitLogger(config)

	// 4. Print banner
	common.PrintBanner(common.LoadVersionFromFile())

	logger.Info().
		Strs("config_files", configFiles).
		Str("environment", config.Environment).
		Msg("Application configuration loaded")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	// One-shot modes run without the HTTP server
	switch {
	case *runIngest:
		os.Exit(ingestMode(application))
	case *queryText != "":
		os.Exit(queryMode(application, *queryText))
	case *batchFile != "":
		os.Exit(batchMode(application, *batchFile))
	}

	serveMode(application)
}

// serveMode runs the HTTP server until interrupted.
func serveMode(application *app.App) {
	srv := server.New(application)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Fatal().Str("panic", fmt.Sprintf("%v", r)).Msg("Server goroutine panicked")
			}
		}()

		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Give goroutine a moment to start
	time.Sleep(100 * time.Millisecond)

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
}

// ingestMode loads the corpus directory into the index.
func ingestMode(application *app.App) int {
	stats, err := application.Corpus.IngestDir(context.Background(), config.Corpus.Dir)
	if err != nil {
		logger.Error().Err(err).Str("dir", config.Corpus.Dir).Msg("Ingestion failed")
		return 1
	}

	fmt.Printf("Ingested %d documents (%d chunks)\n", stats.Documents, stats.Chunks)
	for _, skipped := range stats.Skipped {
		fmt.Printf("  skipped: %s\n", skipped)
	}
	return 0
}

// queryMode answers one query and prints the result.
func queryMode(application *app.App, query string) int {
	result, err := application.Pipeline.ProcessQuery(context.Background(), query)
	if err != nil {
		logger.Error().Err(err).Msg("Query failed")
		return 1
	}

	fmt.Println(pipeline.FormatWithSources(result))
	if !result.Accepted {
		fmt.Printf("\n(best of %d attempts, quality floor not reached)\n", result.Attempts)
	}
	return 0
}

// batchQueries is the YAML shape accepted by -batch.
type batchQueries struct {
	Queries []string `yaml:"queries"`
}

// batchMode answers every query in a YAML file sequentially.
func batchMode(application *app.App, path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to read batch file")
		return 1
	}

	var batch batchQueries
	if err := yaml.Unmarshal(data, &batch); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to parse batch file")
		return 1
	}
	if len(batch.Queries) == 0 {
		logger.Error().Str("path", path).Msg("Batch file contains no queries")
		return 1
	}

	result, err := application.Pipeline.ProcessBatch(context.Background(), batch.Queries)
	if err != nil {
		logger.Error().Err(err).Msg("Batch failed")
		return 1
	}

	for i, item := range result.Items {
		fmt.Printf("--- [%d/%d] %s\n", i+1, len(result.Items), item.Query)
		if item.Error != "" {
			fmt.Printf("error: %s\n\n", item.Error)
			continue
		}
		fmt.Printf("%s\n\n", pipeline.FormatWithSources(item.Result))
	}
	fmt.Printf("%d succeeded, %d failed\n", result.Succeeded, result.Failed)

	if result.Failed > 0 {
		return 1
	}
	return 0
}
