package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/threadplay/internal/blob"
	"github.com/jfmyers9/threadplay/internal/config"
	"github.com/jfmyers9/threadplay/internal/media"
	"github.com/jfmyers9/threadplay/internal/player"
	"github.com/jfmyers9/threadplay/internal/session"
	"github.com/jfmyers9/threadplay/internal/tui"
)

var (
	playFiles  []string
	playNoTUI  bool
	playListen string
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play [thread-url]",
	Short: "Play a thread's videos as a playlist",
	Long: `Play every video posted in a thread, in order, through the configured
media player.

A "#n" fragment on the URL starts playback at the n-th video. Use --files
to play local files instead of a thread.

The playlist is shown in a terminal UI unless --no-tui is given, in which
case playlist changes are logged. While running, a control API listens on
the configured address so that 'threadplay next', 'threadplay goto' and
friends can drive the player from another terminal.

Keys:
  space      play/pause
  n, →       next video
  p, ←       previous video
  l          toggle loop
  r          reload the thread
  enter      play the highlighted video
  q          quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringSliceVarP(&playFiles, "files", "f", nil, "Local files to play instead of a thread")
	playCmd.Flags().BoolVar(&playNoTUI, "no-tui", false, "Log playlist changes instead of showing the terminal UI")
	playCmd.Flags().StringVar(&playListen, "listen", "", "Control API address (overrides config)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && len(playFiles) == 0 {
		return fmt.Errorf("a thread URL or --files is required")
	}
	if len(args) > 0 && len(playFiles) > 0 {
		return fmt.Errorf("a thread URL and --files cannot be combined")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if playListen != "" {
		cfg.ListenAddr = playListen
	}

	// The TUI owns the terminal, so logs go to a file unless one was given
	logPath := logFile
	if logPath == "" && !playNoTUI {
		dir, err := dataDir()
		if err != nil {
			return err
		}
		logPath = filepath.Join(dir, "threadplay.log")
	}
	logger := setupLogger(logPath, logLevel)

	logger.Info().
		Str("version", version).
		Msg("Starting threadplay")

	files := make([]blob.File, 0, len(playFiles))
	for _, path := range playFiles {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("cannot play %s: %w", path, err)
		}
		files = append(files, blob.OSFile(path))
	}

	listener, err := session.Listen(cfg.ListenAddr)
	if err != nil {
		return err
	}
	blobs := blob.NewStore("http://"+listener.Addr().String(), logger)

	res, closeResolver, err := newResolver(cfg, logger, blobs)
	if err != nil {
		_ = listener.Close()
		return err
	}
	defer closeResolver()

	mediaPlayer := media.NewExecPlayer(cfg.Player.Command, cfg.Player.Args, logger)
	defer func() {
		if err := mediaPlayer.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to stop media player")
		}
	}()

	sinks := player.Sinks{Media: mediaPlayer}
	var ui *tui.App
	if playNoTUI {
		logSink := session.NewLogSink(logger)
		sinks.Playlist = logSink
		sinks.Navigator = logSink
		sinks.Title = logSink
	} else {
		ui = tui.New()
		sinks.Playlist = ui
		sinks.Navigator = ui
		sinks.Title = ui
	}

	ctrl := player.New(sinks, res, logger)

	sess := session.New(session.Config{
		RefreshInterval: time.Duration(cfg.RefreshInterval) * time.Second,
	}, ctrl, mediaPlayer, blobs, listener, logger)

	if ui != nil {
		ui.SetControls(sess)
		ctrl.Subscribe(ui.Observe)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle first signal gracefully, second signal forces exit
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		logger.Info().Msg("Shutdown signal received, initiating graceful shutdown")
		cancel()

		<-sigChan
		logger.Warn().Msg("Second shutdown signal received, forcing exit")
		os.Exit(1)
	}()

	sessErr := make(chan error, 1)
	go func() {
		sessErr <- sess.Run(ctx)
	}()

	if len(files) > 0 {
		sess.LoadFiles(files)
	} else {
		sess.LoadRemote(args[0])
	}

	if ui != nil {
		// Quitting the UI ends the session; a stopped session ends the UI
		go func() {
			<-sess.Done()
			cancel()
		}()
		if err := ui.Run(ctx); err != nil {
			cancel()
			<-sessErr
			return err
		}
		cancel()
	}

	if err := <-sessErr; err != nil {
		return fmt.Errorf("session error: %w", err)
	}

	logger.Info().Msg("threadplay stopped")
	return nil
}
