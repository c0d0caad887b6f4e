package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"feedgram/auth"
	"feedgram/directory"
	"feedgram/domain/chat"
	"feedgram/gateway"
	"feedgram/moderation"
	"feedgram/observability"
	"feedgram/realtime"
	"feedgram/repositories"
	"feedgram/runtime/workers"
	"feedgram/sink"
	"feedgram/store"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// main is a thin wrapper: call run() and translate its result into an
	// OS exit code, letting every defer fire first.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := characterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Moderation dictionary
	censoredData, err := moderation.LoadCensoredWords()
	if err != nil {
		return exitRuntime, fmt.Errorf("loading censored words: %w", err)
	}
	logger.Info("Moderation dictionary loaded",
		"words", len(censoredData.Words), "languages", censoredData.Languages)
	moderator, err := moderation.NewModerator(censoredData.Words, charReplacement, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("building moderator: %w", err)
	}

	// 4. State & realtime core
	users := directory.Seed()
	convos := store.NewConversationStore(logger)
	group := store.NewGroupStore(logger)
	posts := store.NewPostStore()
	if config.SeedDemoData {
		if err := seedDemoData(users, convos, group, posts); err != nil {
			return exitRuntime, fmt.Errorf("seeding demo data: %w", err)
		}
	}

	monitoring := observability.NewMonitoringManager()
	registry := realtime.NewRegistry(logger)
	archive := repositories.NewGroupArchive(db, blugeWriter, logger)

	dispatcher := realtime.NewDispatcher(logger, convos, group, posts, users,
		registry, &moderator, config.CommandBuffer, monitoring)
	dispatcher.AddSinks(sink.NewArchive(archive, monitoring, logger))

	// 5. Supervision
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := workers.NewSupervisor(logger)
	sup.Add(dispatcher, workers.NewStatsWorker(logger, monitoring, config.StatsInterval))
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 6. HTTP & websocket surface
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	gw := gateway.New(logger, dispatcher, registry, convos, group, posts,
		users, archive, monitoring, tokens, config.SessionBuffer)
	app := gw.App()

	errChan := make(chan error, 1)
	go func() {
		address := fmt.Sprintf(":%d", config.Port)
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := app.Listen(address); err != nil {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for stop or error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Graceful shutdown: close the surface first, then drain workers.
	logger.Info("Shutting down gracefully...")
	_ = app.Shutdown()
	sup.Stop()
	<-supDone
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

// seedDemoData installs the fixture conversation, group log and feed the
// development frontend expects.
func seedDemoData(users *directory.Directory, convos *store.ConversationStore,
	group *store.GroupStore, posts *store.PostStore) error {
	now := time.Now().UTC()

	err := convos.SeedConversation(chat.Conversation{
		ID:           "convo1",
		Participants: [2]string{"alex", "brian"},
		Messages: []chat.ChatMessage{
			{
				ID:        "m1",
				SenderID:  "brian",
				Text:      "Hey, how are you?",
				Timestamp: now.Add(-time.Hour),
				ReadBy:    []string{"alex"},
			},
			{
				ID:        "m2",
				SenderID:  "alex",
				Text:      "Doing great, thanks for asking! You?",
				Timestamp: now.Add(-59 * time.Minute),
				ReadBy:    []string{},
			},
		},
	})
	if err != nil {
		return err
	}

	brian, _ := users.Snapshot("brian")
	casey, _ := users.Snapshot("casey")
	group.Seed(chat.GroupMessage{
		ID:        uuid.NewString(),
		User:      brian,
		Text:      "Hey everyone, welcome to the global chat!",
		Timestamp: now.Add(-10 * time.Minute),
	})
	group.Seed(chat.GroupMessage{
		ID:        uuid.NewString(),
		User:      casey,
		Text:      "This is cool!",
		Timestamp: now.Add(-9 * time.Minute),
	})

	posts.Create("alex", "Just enjoying a beautiful day out in nature!",
		"https://picsum.photos/seed/picsum/600/400", "")
	posts.Create("brian", "Check out this cool video I made!", "",
		"http://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4")
	posts.Create("casey", "My new blog post is live! Link in bio.", "", "")
	return nil
}
