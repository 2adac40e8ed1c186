package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "Prospect API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per company for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test companies with known websites covering different site shapes, so
// the benchmark exercises fetch and extraction without a search key.
var testCompanies = []struct {
	Label   string
	Name    string
	Website string
}{
	{"Static", "Example Domain", "https://example.com"},
	{"OSS", "The Go Programming Language", "https://go.dev"},
	{"Org", "Internet Engineering Task Force", "https://www.ietf.org"},
	{"News", "BBC", "https://www.bbc.com"},
	{"Complex", "GitHub", "https://github.com"},
}

// --- Request / Response types (mirrors models package) ---

type profileRequest struct {
	Name    string `json:"name"`
	Website string `json:"website"`
}

type profileResponse struct {
	Success bool `json:"success"`
	Profile *struct {
		Website      string   `json:"website"`
		Emails       []string `json:"emails"`
		ContactForm  string   `json:"contact_form"`
		FacebookPage string   `json:"facebook_page"`
		LogoURL      string   `json:"logo_url"`
	} `json:"profile"`
	Timing timingInfo   `json:"timing"`
	Error  *errorDetail `json:"error,omitempty"`
}

type timingInfo struct {
	TotalMs   int64 `json:"total_ms"`
	SearchMs  int64 `json:"search_ms"`
	FetchMs   int64 `json:"fetch_ms"`
	ExtractMs int64 `json:"extract_ms"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Benchmark result types ---

type runResult struct {
	Run            int    `json:"run"`
	TotalMs        int64  `json:"total_ms"`
	FetchMs        int64  `json:"fetch_ms"`
	ExtractMs      int64  `json:"extract_ms"`
	EmailsFound    int    `json:"emails_found"`
	HasContactForm bool   `json:"has_contact_form"`
	HasFacebook    bool   `json:"has_facebook"`
	HasLogo        bool   `json:"has_logo"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
}

type companyAverages struct {
	TotalMs   float64 `json:"total_ms"`
	FetchMs   float64 `json:"fetch_ms"`
	ExtractMs float64 `json:"extract_ms"`
}

type companyResult struct {
	Name     string           `json:"name"`
	Website  string           `json:"website"`
	Label    string           `json:"label"`
	Runs     []runResult      `json:"runs"`
	Averages *companyAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp     string          `json:"timestamp"`
	APIURL        string          `json:"api_url"`
	RunsPerTarget int             `json:"runs_per_target"`
	Results       []companyResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== Prospect Benchmark Suite ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/co:   %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure Prospect is running (e.g. make run)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		APIURL:        *apiURL,
		RunsPerTarget: *runs,
	}

	for _, t := range testCompanies {
		fmt.Printf("Benchmarking [%s] %s (%s) ...\n", t.Label, t.Name, t.Website)
		cr := companyResult{Name: t.Name, Website: t.Website, Label: t.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkCompany(t.Name, t.Website, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d emails\n", rr.TotalMs, rr.EmailsFound)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			cr.Runs = append(cr.Runs, rr)
		}

		cr.Averages = computeAverages(cr.Runs)
		report.Results = append(report.Results, cr)
		fmt.Println()
	}

	// Print summary table.
	printTable(report.Results)

	// Write JSON report.
	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkCompany(name, website string, run int) runResult {
	rr := runResult{Run: run}

	reqBody := profileRequest{
		Name:    name,
		Website: website,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest("POST", *apiURL+"/api/v1/profile", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var pr profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = pr.Success
	rr.TotalMs = pr.Timing.TotalMs
	rr.FetchMs = pr.Timing.FetchMs
	rr.ExtractMs = pr.Timing.ExtractMs
	if pr.Profile != nil {
		rr.EmailsFound = len(pr.Profile.Emails)
		rr.HasContactForm = pr.Profile.ContactForm != ""
		rr.HasFacebook = pr.Profile.FacebookPage != ""
		rr.HasLogo = pr.Profile.LogoURL != ""
	}

	if pr.Error != nil {
		rr.Error = pr.Error.Message
	}

	return rr
}

func computeAverages(runs []runResult) *companyAverages {
	var successCount int
	var avg companyAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
		avg.FetchMs += float64(r.FetchMs)
		avg.ExtractMs += float64(r.ExtractMs)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.TotalMs /= n
	avg.FetchMs /= n
	avg.ExtractMs /= n
	return &avg
}

func printTable(results []companyResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Company\tAvg Latency\tFetch\tExtract\tEmails\tForm\tSocial\tLogo\n")
	fmt.Fprintf(w, "───────\t───────────\t─────\t───────\t──────\t────\t──────\t────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\t-\t-\t-\n", truncate(r.Name, 30))
			continue
		}

		last := r.Runs[len(r.Runs)-1]
		fmt.Fprintf(w, "%s\t%dms\t%dms\t%dms\t%d\t%s\t%s\t%s\n",
			truncate(r.Name, 30),
			int64(r.Averages.TotalMs),
			int64(r.Averages.FetchMs),
			int64(r.Averages.ExtractMs),
			last.EmailsFound,
			yesNo(last.HasContactForm),
			yesNo(last.HasFacebook),
			yesNo(last.HasLogo),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
