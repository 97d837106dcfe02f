package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/threadplay/internal/config"
	"github.com/jfmyers9/threadplay/internal/session"
)

var controlAddr string

// nextCmd represents the next command
var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to the next video",
	Long:  `Skip to the next video of the running player, wrapping to the first after the last.`,
	Args:  cobra.NoArgs,
	RunE:  controlAction(session.ActionNext),
}

// prevCmd represents the prev command
var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Go to the previous video",
	Long:  `Go to the previous video of the running player, wrapping to the last before the first.`,
	Args:  cobra.NoArgs,
	RunE:  controlAction(session.ActionPrev),
}

// toggleCmd represents the toggle command
var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle play/pause",
	Long:  `Toggle between play and pause. If playing, pauses. If paused, resumes the current video.`,
	Args:  cobra.NoArgs,
	RunE:  controlAction(session.ActionToggle),
}

// pauseCmd represents the pause command
var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback",
	Args:  cobra.NoArgs,
	RunE:  controlAction(session.ActionPause),
}

// resumeCmd represents the resume command
var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the current video",
	Args:  cobra.NoArgs,
	RunE:  controlAction(session.ActionResume),
}

// loopCmd represents the loop command
var loopCmd = &cobra.Command{
	Use:   "loop",
	Short: "Toggle repeating the current video",
	Args:  cobra.NoArgs,
	RunE:  controlAction(session.ActionLoop),
}

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reload the current thread",
	Long: `Reload the current thread, keeping the current position.

Fails if the running player is not playing a thread.`,
	Args: cobra.NoArgs,
	RunE: controlAction(session.ActionRefresh),
}

// gotoCmd represents the goto command
var gotoCmd = &cobra.Command{
	Use:   "goto <position>",
	Short: "Play the video at a position",
	Long:  `Play the video at a 1-based position in the running player's playlist.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGoto,
}

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load <thread-url>",
	Short: "Load another thread into the running player",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the running player is playing",
	Long: `Show the state of the running player.

Exit codes:
  0 - A video is playing
  1 - Paused, nothing loaded, or no player running`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	for _, c := range []*cobra.Command{nextCmd, prevCmd, toggleCmd, pauseCmd, resumeCmd, loopCmd, refreshCmd, gotoCmd, loadCmd, statusCmd} {
		c.Flags().StringVar(&controlAddr, "addr", "", "Control API address of the running player (default: listen_addr from config)")
		rootCmd.AddCommand(c)
	}
}

// newControlClient returns a client for the running player
func newControlClient() (*session.Client, error) {
	addr := controlAddr
	if addr == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		addr = cfg.ListenAddr
	}
	return session.NewClient(addr, nil), nil
}

func controlAction(action string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, err := newControlClient()
		if err != nil {
			return err
		}
		if err := client.Control(ctx, action); err != nil {
			return fmt.Errorf("failed to %s: %w", action, err)
		}

		return nil
	}
}

func runGoto(cmd *cobra.Command, args []string) error {
	position, err := strconv.Atoi(args[0])
	if err != nil || position < 1 {
		return fmt.Errorf("invalid position: %s (must be a number from 1)", args[0])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := newControlClient()
	if err != nil {
		return err
	}
	if err := client.Play(ctx, position); err != nil {
		return fmt.Errorf("failed to play position %d: %w", position, err)
	}

	return nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := newControlClient()
	if err != nil {
		return err
	}
	if err := client.Load(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := newControlClient()
	if err != nil {
		return err
	}
	state, err := client.State(ctx)
	if err != nil {
		return fmt.Errorf("failed to get state: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatStatus(state))

	// If not playing, exit with code 1
	if state.Total == 0 || state.Paused {
		os.Exit(1)
	}
	return nil
}

// formatStatus renders a state as a single line
func formatStatus(state *session.StateResponse) string {
	if state.Total == 0 {
		if state.Label != "" {
			return state.Label + ": nothing to play"
		}
		return "Nothing loaded"
	}

	icon := "▶"
	if state.Paused {
		icon = "⏸"
	}
	line := fmt.Sprintf("%s %d/%d %s", icon, state.Position, state.Total, state.Title)
	if state.Label != "" {
		line += " - " + state.Label
	}
	if state.Loop {
		line += " (loop)"
	}
	return line
}
