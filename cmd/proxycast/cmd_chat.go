package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/terryso/proxycast/internal/audio"
	"github.com/terryso/proxycast/internal/channel"
	"github.com/terryso/proxycast/internal/config"
	"github.com/terryso/proxycast/internal/engine"
	"github.com/terryso/proxycast/internal/notify"
	"github.com/terryso/proxycast/internal/session"
	"github.com/terryso/proxycast/internal/state"
	"github.com/terryso/proxycast/internal/types"
	"github.com/terryso/proxycast/internal/usage"
	"github.com/terryso/proxycast/pkg/agent/ws"
)

func init() {
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	ctx := cmd.Context()
	broker := channel.NewBroker()

	client, err := ws.Dial(ctx, cfg.Agent.URL, broker, ws.WithAPIKey(cfg.Agent.APIKey))
	if err != nil {
		return fmt.Errorf("connect to agent at %s: %w", cfg.Agent.URL, err)
	}
	defer client.Close()

	if cfg.Agent.AutoStart {
		status, err := client.Status(ctx)
		if err != nil {
			return fmt.Errorf("query agent status: %w", err)
		}
		if !status.Running {
			if err := client.StartAgent(ctx); err != nil {
				return fmt.Errorf("start agent: %w", err)
			}
		}
	}

	eng, err := buildEngine(cfg, client, broker)
	if err != nil {
		return err
	}

	fmt.Println("proxycast chat. Type /help for commands, /quit to exit.")
	printStatus(eng)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := runSlashCommand(ctx, eng, line); quit {
				break
			}
			continue
		}
		sendAndWait(ctx, eng, line)
	}
	return scanner.Err()
}

// buildEngine wires the conversation engine from config.
func buildEngine(cfg *config.Config, client *ws.Client, broker *channel.Broker) (*engine.Engine, error) {
	prefs := state.NewPrefStore(cfg.DataDir)
	run := state.NewRunStore()

	notifier := notify.NewRegistry()
	notifier.Register(notify.KindError, func(_ notify.Kind, message string) {
		fmt.Fprintf(os.Stderr, "\n! %s\n", message)
	})

	var cues types.AudioCues
	if cfg.Audio.Enabled {
		cues = audio.NewThrottled(
			&audio.Bell{W: os.Stderr},
			time.Duration(cfg.Audio.ThrottleMS)*time.Millisecond,
		)
	}

	var journal *state.Journal
	if cfg.Journal.Enabled {
		journal = state.NewJournal(filepath.Join(cfg.DataDir, "journal"))
	}

	meter, err := usage.NewMeter(cfg.Chat.Model)
	if err != nil {
		return nil, fmt.Errorf("create usage meter: %w", err)
	}

	eng := engine.New(engine.Options{
		Client:       client,
		Registry:     session.NewRegistry(client),
		Broker:       broker,
		Durable:      prefs,
		Ephemeral:    run,
		Cues:         cues,
		Notifier:     notifier,
		Journal:      journal,
		Meter:        meter,
		SystemPrompt: cfg.Chat.SystemPrompt,
	})
	if eng.Provider() == "" {
		eng.SetProvider(cfg.Chat.Provider)
	}
	if eng.Model() == "" {
		eng.SetModel(cfg.Chat.Model)
	}
	return eng, nil
}

// sendAndWait issues one message and blocks until the generation ends,
// then renders the assistant reply.
func sendAndWait(ctx context.Context, eng *engine.Engine, text string) {
	msg, err := eng.Send(ctx, text, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "! %v\n", err)
		return
	}

	for eng.IsSending() {
		select {
		case <-ctx.Done():
			eng.StopSending()
		case <-time.After(50 * time.Millisecond):
		}
	}

	printMessage(msg)
	if u := eng.LastUsage(); u != nil {
		fmt.Printf("(context: ~%d tokens, last turn: %d in / %d out)\n",
			eng.ContextTokens(), u.InputTokens, u.OutputTokens)
	} else {
		fmt.Printf("(context: ~%d tokens)\n", eng.ContextTokens())
	}
}

// printMessage renders an assistant message with its interleaved text
// and tool parts in arrival order.
func printMessage(msg *types.Message) {
	if len(msg.ContentParts) == 0 {
		fmt.Println(msg.Content)
		return
	}
	for _, part := range msg.ContentParts {
		switch part.Type {
		case types.PartText:
			fmt.Println(part.Text)
		case types.PartToolUse:
			if part.ToolCall == nil {
				continue
			}
			fmt.Printf("[tool %s: %s]\n", part.ToolCall.Name, part.ToolCall.Status)
		}
	}
}

func printStatus(eng *engine.Engine) {
	fmt.Printf("provider=%s model=%s", eng.Provider(), eng.Model())
	if id, ok := eng.ActiveSession(); ok {
		fmt.Printf(" topic=%s", id)
	}
	fmt.Println()
}

// runSlashCommand handles one console command. Returns true to quit.
func runSlashCommand(ctx context.Context, eng *engine.Engine, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		eng.StopSending()
		return true
	case "/help":
		fmt.Println(`/stop            cancel the in-flight generation
/new             start a fresh topic
/topics          list topics
/switch <id>     switch to a topic
/provider <id>   select provider
/model <id>      select model
/clear           clear the transcript
/status          show provider, model and topic
/quit            exit`)
	case "/stop":
		eng.StopSending()
	case "/new":
		eng.ClearMessages()
		fmt.Println("Started a new topic.")
	case "/topics":
		topics := eng.Topics(ctx)
		if len(topics) == 0 {
			fmt.Println("No topics.")
			return false
		}
		for _, s := range topics {
			fmt.Printf("%s  %s\n", s.ID, s.Title)
		}
	case "/switch":
		if len(fields) < 2 {
			fmt.Println("usage: /switch <id>")
			return false
		}
		if err := eng.SwitchTopic(ctx, types.SessionID(fields[1])); err != nil {
			fmt.Fprintf(os.Stderr, "! %v\n", err)
			return false
		}
		for _, msg := range eng.Transcript() {
			fmt.Printf("%s: %s\n", msg.Role, msg.Content)
		}
	case "/provider":
		if len(fields) < 2 {
			fmt.Println("usage: /provider <id>")
			return false
		}
		eng.SetProvider(fields[1])
		printStatus(eng)
	case "/model":
		if len(fields) < 2 {
			fmt.Println("usage: /model <id>")
			return false
		}
		eng.SetModel(fields[1])
		printStatus(eng)
	case "/clear":
		eng.ClearMessages()
		fmt.Println("Transcript cleared.")
	case "/status":
		printStatus(eng)
	default:
		fmt.Printf("unknown command: %s\n", fields[0])
	}
	return false
}
