package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dygy/scorebot/internal/config"
	"github.com/dygy/scorebot/internal/exec"
	"github.com/dygy/scorebot/internal/media"
	"github.com/dygy/scorebot/internal/oracle"
	"github.com/dygy/scorebot/internal/router"
	"github.com/dygy/scorebot/internal/server"
	"github.com/dygy/scorebot/internal/session"
	"github.com/dygy/scorebot/internal/workspace"
)

var (
	version = "0.1.0"

	configFile  string
	sessionID   string
	attachFlags []string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "scorebot",
	Short: "Chat dispatcher for music transcription and audio processing",
	Long: `Scorebot turns free-text chat messages into music processing actions.

Ask it to transcribe a YouTube link to MIDI, render sheet music, trim
audio between two timestamps, separate an instrument stem, or search
for a song — in plain language, and in any combination:

  "Can you convert this to MIDI: https://youtu.be/..."
  "Trim that from 1:30 to 2:45, then make sheet music from it"
  "Find Fur Elise and give me just the piano"

A language model classifies each message; scorebot resolves which audio
it refers to (links, uploads, or results of earlier requests) and runs
the external tools.`,
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat webhook server",
	Long: `Start the HTTP server that chat transports deliver messages to.

Example:
  scorebot serve --config configs/scorebot.yaml`,
	RunE: runServe,
}

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Process a single message locally",
	Long: `Process one message against a local session and print the replies.
Useful for trying the dispatcher without a transport in front of it.

Examples:
  scorebot chat "find Fur Elise and convert it to MIDI"
  scorebot chat --session abc123 "now trim that from 0:30 to 1:00"
  scorebot chat --attach song.mp3 "separate the drums from this"`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	chatCmd.Flags().StringVar(&sessionID, "session", "", "session ID to continue a conversation")
	chatCmd.Flags().StringArrayVar(&attachFlags, "attach", nil, "audio file to attach (repeatable)")
	rootCmd.AddCommand(serveCmd, chatCmd)
}

// buildSessions wires the full dispatcher stack from config.
func buildSessions(cfg *config.Config) (*session.Manager, *workspace.Layout, error) {
	layout, err := workspace.New(cfg.Media.Dir)
	if err != nil {
		return nil, nil, err
	}

	runner := exec.NewRunner(cfg.Tools.PythonPath, cfg.Media.Dir)

	caps := router.Capabilities{
		Fetcher:     media.NewFetcher(runner, cfg.Tools.YtDlpPath, layout),
		Searcher:    media.NewSearcher(runner, cfg.Tools.YtDlpPath, cfg.Media.SearchMaxSeconds),
		Transcriber: media.NewTranscriber(runner, cfg.Tools.TranskunPath, layout, cfg.Tools.UseGPU),
		Notator:     media.NewNotator(cfg.Tools.NotationURL, layout),
		Trimmer:     media.NewTrimmer(runner, cfg.Tools.FfmpegPath, layout),
		Separator:   media.NewStemSeparator(runner, layout),
	}

	rt := router.New(caps, slog.Default())
	or := oracle.NewClient(cfg.Oracle)

	return session.NewManager(or, rt, cfg.Media.CacheCapacity, slog.Default()), layout, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	config.SetupLogging(cfg.Logging)

	sessions, layout, err := buildSessions(cfg)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{Port: cfg.Server.Port}, sessions, layout, slog.Default())
	return srv.Run()
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	config.SetupLogging(cfg.Logging)

	sessions, _, err := buildSessions(cfg)
	if err != nil {
		return err
	}

	attachments := make([]session.Attachment, 0, len(attachFlags))
	for _, path := range attachFlags {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("attachment %s: %w", path, err)
		}
		attachments = append(attachments, session.Attachment{Path: path})
	}

	sess := sessions.Get(sessionID)
	replies := sess.Handle(cmd.Context(), args[0], attachments)

	fmt.Printf("session: %s\n", sess.ID)
	for _, reply := range replies {
		fmt.Println(reply.Text)
		if reply.FilePath != "" {
			fmt.Printf("  -> %s\n", reply.FilePath)
		}
	}
	return nil
}
