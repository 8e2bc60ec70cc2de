package main

import (
	"fmt"
	"log"
	"net/http"
	"slices"

	"codexp/config"
	"codexp/db"
	"codexp/handlers"
	"codexp/services/agents"
	"codexp/services/executor"
	"codexp/services/llm"
	"codexp/services/orchestrator"
	"codexp/services/search"
	"codexp/services/tuner"

	"github.com/gorilla/mux"
)

const llmModel = "gpt-4o-mini"

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DB_URL environment variable is required")
	}

	if cfg.PineconeAPIKey == "" {
		log.Fatal("PINECONE_API_KEY environment variable is required")
	}

	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	if cfg.AnthropicAPIKey == "" {
		log.Fatal("ANTHROPIC_API_KEY environment variable is required")
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	interactionRepo, err := db.NewPostgresInteractionRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize interaction database: %v", err)
	}
	defer interactionRepo.Close()

	problemRepo, err := db.NewPostgresProblemRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize problem database: %v", err)
	}
	defer problemRepo.Close()

	progressRepo, err := db.NewPostgresProgressRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize progress database: %v", err)
	}
	defer progressRepo.Close()

	llmClient, err := llm.NewClient(cfg.OpenAIAPIKey, llmModel)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	searchService, err := search.NewService(cfg.PineconeAPIKey, cfg.OpenAIAPIKey, cfg.PineconeIndexName)
	if err != nil {
		log.Fatalf("Failed to initialize vector search service: %v", err)
	}

	execService := executor.NewService(cfg.ExecAPIBase, problemRepo)

	explainAgent := agents.NewExplainAgent(llmClient)
	conversationAgent := agents.NewConversationAgent(llmClient)
	suggestAgent := agents.NewSuggestAgent(searchService, progressRepo)
	hintAgent := agents.NewHintAgent(llmClient)
	feedbackAgent := agents.NewFeedbackAgent(cfg.AnthropicAPIKey)

	coordinator := orchestrator.NewCoordinator(hintAgent, execService)
	memory := orchestrator.NewMemory(interactionRepo, llmClient)
	agentRouter := orchestrator.NewRouter(llmClient)

	orchestratorService := orchestrator.NewService(
		agentRouter, memory,
		explainAgent, coordinator, suggestAgent, conversationAgent,
		interactionRepo,
	)

	tunerAgent := tuner.NewAgent(cfg.QTablePath)

	orchestrateHandler := handlers.NewOrchestrateHandler(orchestratorService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackAgent)
	tunerHandler := handlers.NewTunerHandler(tunerAgent)

	auth, err := handlers.NewAuthMiddleware(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to initialize auth middleware: %v", err)
	}

	router := mux.NewRouter()

	router.Use(corsMiddleware(cfg.AllowOrigins))

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	protected := router.NewRoute().Subrouter()
	protected.Use(auth)
	orchestrateHandler.RegisterRoutes(protected)
	feedbackHandler.RegisterRoutes(protected)

	tunerHandler.RegisterRoutes(router)

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s\n", cfg.Port)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func corsMiddleware(allowOrigins []string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && slices.Contains(allowOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
				w.Header().Set("Access-Control-Allow-Headers", "*")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}
