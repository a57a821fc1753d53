package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/mabhi256/jfreader"
	"github.com/mabhi256/jfreader/utils"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var summaryCmd = &cobra.Command{
	Use:               "summary [jfr-file]...",
	Short:             "Print per-chunk and per-event-type counts for one or more recordings",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".jfr"}, false),
	RunE: func(cmd *cobra.Command, args []string) error {
		reports := make([]fileSummary, len(args))

		var g errgroup.Group
		for i, filename := range args {
			i, filename := i, filename
			g.Go(func() error {
				report, err := summarizeFile(filename)
				if err != nil {
					return fmt.Errorf("%s: %w", filename, err)
				}
				reports[i] = report
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for _, report := range reports {
			printFileSummary(report)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

// fileSummary is everything summary gathers for one recording. Each file
// is decoded single-threaded by its own goroutine in the errgroup above;
// the chunks of one file are never split across goroutines.
type fileSummary struct {
	filename   string
	chunks     int
	duration   time.Duration
	eventCount map[string]int
}

func summarizeFile(filename string) (fileSummary, error) {
	src, err := jfr.OpenFile(filename)
	if err != nil {
		return fileSummary{}, err
	}
	defer src.Close()

	report := fileSummary{filename: filename, eventCount: make(map[string]int)}

	jr := jfr.Open(src, jfr.ReaderOptions{})
	for {
		chunk, err := jr.Next()
		if err != nil {
			return fileSummary{}, err
		}
		if chunk == nil {
			break
		}
		report.chunks++
		report.duration += time.Duration(chunk.Header.DurationNanos)

		it := chunk.Events()
		for {
			ev, ok := it.Next()
			if !ok {
				break
			}
			report.eventCount[ev.Class.Name]++
		}
		if err := it.Err(); err != nil {
			return fileSummary{}, err
		}
	}

	return report, nil
}

func printFileSummary(report fileSummary) {
	fmt.Println(utils.TitleStyle.Render(filepath.Base(report.filename)))
	fmt.Printf("  chunks: %d, duration: %s\n", report.chunks, utils.FormatDuration(report.duration))

	names := make([]string, 0, len(report.eventCount))
	for name := range report.eventCount {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return report.eventCount[names[i]] > report.eventCount[names[j]]
	})

	for _, name := range names {
		fmt.Printf("  %-40s %s\n", name, utils.InfoStyle.Render(fmt.Sprintf("%d", report.eventCount[name])))
	}
	fmt.Println()
}
