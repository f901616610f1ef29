package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hindi-drill-service/internal/app"
	"hindi-drill-service/internal/config"
	"hindi-drill-service/internal/domain"
	"hindi-drill-service/internal/infra/memory"
	pgloader "hindi-drill-service/internal/infra/postgres"
	redisinfra "hindi-drill-service/internal/infra/redis"
	"hindi-drill-service/internal/logging"
	transport "hindi-drill-service/internal/transport/http"
	"hindi-drill-service/internal/xp"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the drill server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(demoQuizzes())
	if pool != nil {
		loader = pgloader.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	service := app.NewDrillService(store, quizRepo, xp.NewRuleAwarder(), logger)
	wsHandler := transport.NewWSHandler(service, logger)
	feedbackHandler := transport.NewFeedbackHandler(service, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.Handle("/api/feedback", feedbackHandler)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting drill service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// demoQuizzes lets the server run without Postgres; swap the loader for the
// DB-backed one in production.
func demoQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"greetings-1": {
			ID:    "greetings-1",
			Title: "Everyday Greetings",
			Questions: []domain.Question{
				{
					ID:           "q1",
					Prompt:       "नमस्ते, आप कैसे हैं?",
					Translation:  "Hello, how are you?",
					Options:      []string{"Hello, how are you?", "Good night, sleep well", "Where is the station?", "What is your name?"},
					CorrectIndex: 0,
					Difficulty:   domain.DifficultyBeginner,
					Category:     "greetings",
					Explanation:  "नमस्ते is the standard greeting; 'how are you?' translates आप कैसे हैं?",
				},
				{
					ID:           "q2",
					Prompt:       "आपका नाम क्या है?",
					Translation:  "What is your name?",
					Options:      []string{"How old are you?", "What is your name?", "Where do you live?", "What do you do?"},
					CorrectIndex: 1,
					Difficulty:   domain.DifficultyBeginner,
					Category:     "greetings",
					Explanation:  "नाम means name; क्या है asks 'what is'.",
				},
				{
					ID:           "q3",
					Prompt:       "फिर मिलेंगे!",
					Translation:  "See you again!",
					Options:      []string{"Thank you very much", "Please come in", "See you again!", "I am sorry"},
					CorrectIndex: 2,
					Difficulty:   domain.DifficultyBeginner,
					Category:     "greetings",
					Explanation:  "फिर means 'again' and मिलेंगे means 'will meet'.",
				},
			},
		},
		"market-1": {
			ID:    "market-1",
			Title: "At the Market",
			Questions: []domain.Question{
				{
					ID:           "q1",
					Prompt:       "यह कितने का है?",
					Translation:  "How much is this?",
					Options:      []string{"How much is this?", "Is this fresh?", "I will take two", "Do you have change?"},
					CorrectIndex: 0,
					Difficulty:   domain.DifficultyIntermediate,
					Category:     "market",
					Explanation:  "कितने का asks the price of an item.",
				},
				{
					ID:           "q2",
					Prompt:       "थोड़ा कम कीजिए।",
					Translation:  "Please lower it a little.",
					Options:      []string{"Please pack it", "Please lower it a little.", "Keep the change", "Show me another"},
					CorrectIndex: 1,
					Difficulty:   domain.DifficultyIntermediate,
					Category:     "market",
					Explanation:  "कम means 'less'; कीजिए is the polite imperative of करना.",
				},
			},
		},
	}
}
