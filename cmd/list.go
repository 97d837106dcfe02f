/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/threadplay/internal/config"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list <thread-url>",
	Short: "Print the playlist of a thread",
	Long: `Fetch a thread and print one line per video, without playing anything.

The output format can be customized in ~/.config/threadplay/config.yaml
using a Go template. Available fields: .Index, .Title, .URL, .Thumbnail,
.Current (true for the video the URL's "#n" fragment points at)

Exit codes:
  0 - Playlist printed
  1 - The thread could not be fetched`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	// Add format flag to override config
	listCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	// Add width flag to set fixed output width
	listCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled, overrides config)")
}

// listEntry is the template data of one output line
type listEntry struct {
	Index     int // 1-based position, usable as a URL fragment
	Title     string
	URL       string
	Thumbnail string
	Current   bool
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Check for format flag override
	formatFlag, _ := cmd.Flags().GetString("format")
	if formatFlag != "" {
		cfg.OutputFormat = formatFlag
	}

	width, _ := cmd.Flags().GetInt("width")
	if width == 0 {
		width = cfg.OutputWidth
	}

	tmpl, err := template.New("output").Parse(cfg.OutputFormat)
	if err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	logger := setupLogger(logFile, logLevel)

	r, closeResolver, err := newResolver(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer closeResolver()

	timeout := time.Duration(cfg.HTTP.Timeout*(cfg.HTTP.Retries+1)) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := r.ResolveThread(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get thread: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Label)
	for i, item := range res.Items {
		line, err := formatEntry(tmpl, listEntry{
			Index:     i + 1,
			Title:     item.Title,
			URL:       item.URL,
			Thumbnail: item.Thumbnail,
			Current:   i == res.Start,
		})
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		fmt.Fprintln(out, padToWidth(line, width))
	}

	return nil
}

// formatEntry applies the template to one playlist entry
func formatEntry(tmpl *template.Template, entry listEntry) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, entry); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}

	currentWidth := runewidth.StringWidth(text)
	if currentWidth == width {
		return text
	}
	if currentWidth < width {
		return text + strings.Repeat(" ", width-currentWidth)
	}

	ellipsis := "..."
	ellipsisWidth := runewidth.StringWidth(ellipsis)
	if width <= ellipsisWidth {
		return runewidth.Truncate(ellipsis, width, "")
	}

	// Wide runes can leave the cut one column short
	result := runewidth.Truncate(text, width-ellipsisWidth, "") + ellipsis
	if resultWidth := runewidth.StringWidth(result); resultWidth < width {
		result += strings.Repeat(" ", width-resultWidth)
	}
	return result
}
