package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rahul/nexus/internal/audit"
	"github.com/rahul/nexus/internal/gateway"
	"github.com/rahul/nexus/internal/intent"
	"github.com/rahul/nexus/internal/observability"
	"github.com/rahul/nexus/internal/pipeline"
	"github.com/rahul/nexus/internal/planner"
	"github.com/rahul/nexus/internal/router"
	"github.com/rahul/nexus/internal/safety"
	"github.com/rahul/nexus/internal/skills"
	"github.com/rahul/nexus/pkg/config"
)

func main() {
	observability.PrintBanner()
	observability.InitializeTerminal()

	// Route all log output through the terminal mutex so it never
	// interrupts the dashboard's cursor save/restore sequence.
	log.SetOutput(observability.NewTermWriter())

	cfg := config.LoadConfig("config.json")

	store, err := audit.Open(cfg.Memory.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	promptDir := cfg.App.PromptDir
	if promptDir == "" {
		promptDir = "./prompts"
	}
	prompts, err := planner.LoadPack(promptDir)
	if err != nil {
		log.Printf("Warning: Failed to load prompt pack, using built-ins: %v", err)
		prompts = &planner.Pack{}
	}

	logger := observability.NewLogger()

	// Initialize LLM (using default enabled provider)
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}

	var llm llms.Model
	switch pName {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(pCfg.APIKey),
			openai.WithModel(pCfg.Model),
		}
		if pCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pCfg.BaseURL))
		}
		llm, err = openai.New(opts...)
	default:
		log.Fatalf("Provider %s not yet implemented in main", pName)
	}

	if err != nil {
		log.Fatal(err)
	}

	gate := safety.NewGate(cfg.ProtectedApps())

	// Assemble skills. Each routable intent kind must end up with exactly
	// one executor, so optional backends fall back to Unavailable.
	mac := skills.NewMacController()
	browser := skills.NewBrowser()
	defer browser.Shutdown()

	var searcher skills.Executor
	searcher, err = skills.NewSearch()
	if err != nil {
		log.Printf("Warning: Failed to initialize search: %v", err)
		searcher = &skills.Unavailable{
			For:    intent.KindSearchWeb,
			Reason: "web search is not available right now",
		}
	}

	var messenger skills.Executor
	if dcCfg, ok := cfg.GetDiscordConfig(); ok {
		messenger, err = skills.NewMessage(dcCfg.Token, cfg.Contacts)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		messenger = &skills.Unavailable{
			For:    intent.KindSendMessage,
			Reason: "messaging is not configured",
		}
	}

	rt, err := router.New(
		&skills.OpenApp{Controller: mac},
		&skills.CloseApp{Controller: mac, Protected: gate},
		&skills.CloseAllApps{Controller: mac, Protected: gate},
		browser,
		searcher,
		skills.NewNote(cfg.App.NotesDir),
		messenger,
	)
	if err != nil {
		log.Fatal(err)
	}

	pipe := &pipeline.Pipeline{
		Planner: planner.NewGenerator(llm, prompts, logger),
		Gate:    gate,
		Router:  rt,
		Apps:    mac,
		Audit:   store,
		Logger:  logger,
		Session: "local",
	}

	var gw gateway.Messenger
	if tgCfg, ok := cfg.GetTelegramConfig(); ok {
		pipe.Session = "telegram"
		gw, err = gateway.NewTelegramGateway(tgCfg.Token, pipe)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		gw = gateway.NewTerminal(pipe, os.Stdin, observability.NewTermWriter())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start Live Resource Dashboard (1-second updates)
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.PrintLiveStatus()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.Heartbeat()
				logger.LogHeartbeat()
			}
		}
	}()

	// Start Gateway in a goroutine so we can wait for context in the main loop
	go func() {
		if err := gw.Start(); err != nil {
			log.Printf("\033[91m[ FAIL ] GATEWAY CRITICAL ERROR: %v\033[0m", err)
		}
		stop() // interactive session ended, shut down
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	gw.Stop()

	// Reset terminal aesthetics
	observability.CleanupTerminal()

	// Give a short time for final logs/syncs
	time.Sleep(500 * time.Millisecond)
	log.Println("\033[95m[ EXIT ] CORE DE-INITIALIZED. GOODBYE.\033[0m")
}
