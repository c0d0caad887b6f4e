// Command viewer is a terminal client for the realtime surface: it
// connects as a user, prints chat activity live and renders a session
// summary on exit.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"feedgram/client"
	"feedgram/domain/chat"
	"feedgram/domain/event"
	"feedgram/sink"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	ServerURL string `envconfig:"SERVER_URL" default:"ws://localhost:3001"`
	UserID    string `envconfig:"USER_ID" required:"true"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"WARN"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Viewer error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var config Config
	if err := envconfig.Process("viewer", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// The timeline sink collects everything seen this session; handlers
	// run on the client read loop, the summary renders on the main
	// goroutine, and the sink's lock sits between them.
	timeline := sink.NewTimeline()
	background := context.Background()

	handlers := client.Handlers{
		OnGroupMessage: func(e event.NewGroupMessage) {
			_ = timeline.Consume(background, e)
			color.Cyan.Printf("[%s] %s: %s\n",
				e.Timestamp.Format(time.TimeOnly), e.User.Name, e.Text)
		},
		OnTyping: func(e event.TypingStatus) {
			if e.IsTyping {
				color.Gray.Printf("%s is typing...\n", e.UserID)
			}
		},
		OnRead: func(e event.MessagesRead) {
			color.Gray.Printf("%s read conversation %s\n", e.ReaderID, e.ConversationID)
		},
		OnPost: func(e event.NewPost) {
			_ = timeline.Consume(background, e)
			color.Green.Printf("New post by %s: %s\n", e.User.Name, e.Content)
		},
	}

	c := client.New(config.ServerURL, config.UserID, handlers, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.Connect(ctx); err != nil {
		return exitRuntime, err
	}
	defer c.Close()

	color.Bold.Printf(">>> Connected to %s as %s (Ctrl+C to quit)...\n",
		config.ServerURL, config.UserID)

	<-ctx.Done()
	c.Close()

	renderSummary(timeline.SnapshotMessages(), timeline.SnapshotPosts())
	return exitOK, nil
}

// renderSummary prints everything seen during the session as tables.
func renderSummary(messages []chat.GroupMessage, posts []chat.EnrichedPost) {
	if len(messages) > 0 {
		color.Bold.Println("\nGroup messages this session:")
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Time", "Author", "Text"})
		table.SetAutoWrapText(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, m := range messages {
			table.Append([]string{m.Timestamp.Format(time.TimeOnly), m.User.Name, m.Text})
		}
		table.Render()
	}

	if len(posts) > 0 {
		color.Bold.Println("\nFeed posts this session:")
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Time", "Author", "Content"})
		table.SetAutoWrapText(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, p := range posts {
			table.Append([]string{p.Timestamp.Format(time.TimeOnly), p.User.Name, p.Content})
		}
		table.Render()
	}
}
