package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lead-agent/prospect/records"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Enrich a CSV of companies with their web presence",
	Long: `Reads a CSV with company rows (name, address, phone, optionally
website), profiles each company and writes the enriched CSV. Rows that
already carry a website skip discovery. Companies are paced to respect
provider rate limits, so large lists take a while.`,
	RunE: runEnrichCmd,
}

var (
	runInput     string
	runOutput    string
	runOwnerInfo bool
	runPace      time.Duration
	runVerbose   bool
)

func init() {
	runCommand.Flags().StringVarP(&runInput, "input", "i", "", "Path to the company CSV (required)")
	runCommand.Flags().StringVarP(&runOutput, "output", "o", "", "Path for the enriched CSV (default: <input>_profiled.csv)")
	runCommand.Flags().BoolVar(&runOwnerInfo, "owner-info", false, "Extract owner/founder details via the LLM (requires ANTHROPIC_API_KEY)")
	runCommand.Flags().DurationVar(&runPace, "pace", 2*time.Second, "Minimum delay between companies")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print debug logging")

	_ = runCommand.MarkFlagRequired("input")

	rootCmd.AddCommand(runCommand)
}

func runEnrichCmd(cmd *cobra.Command, _ []string) error {
	initCLILogger(runVerbose)

	// Ctrl-C stops after the current company; the rows finished so far
	// are still written out.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	in, err := os.Open(runInput)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	recs, err := records.ReadCSV(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", runInput, err)
	}
	fmt.Printf("Loaded %d companies from %s\n", len(recs), runInput)

	p, err := buildPipeline(runOwnerInfo, runPace)
	if err != nil {
		return err
	}

	runErr := p.ProcessAll(ctx, recs, func(done, total int, name string) {
		fmt.Printf("[%d/%d] %s\n", done, total, name)
	})
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	if ctx.Err() != nil {
		fmt.Println("Interrupted, writing rows processed so far")
	}

	output := runOutput
	if output == "" {
		ext := filepath.Ext(runInput)
		output = strings.TrimSuffix(runInput, ext) + "_profiled" + ext
	}
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()
	if err := records.WriteCSV(out, recs); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	var withSite, withEmail int
	for _, rec := range recs {
		if rec.Get("website") != "" {
			withSite++
		}
		if rec.Get("emails") != "" {
			withEmail++
		}
	}
	fmt.Printf("Wrote %s: %d/%d with a website, %d with emails\n",
		output, withSite, len(recs), withEmail)
	return nil
}
