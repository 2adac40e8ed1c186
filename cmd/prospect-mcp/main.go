package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// profileRequest mirrors the Prospect API request model.
type profileRequest struct {
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Website   string `json:"website,omitempty"`
	MaxAge    int    `json:"max_age,omitempty"`
	OwnerInfo bool   `json:"owner_info,omitempty"`
}

// profileResponse mirrors the Prospect API response model.
type profileResponse struct {
	Success bool `json:"success"`
	Company struct {
		Name string `json:"name"`
	} `json:"company"`
	Profile *struct {
		Website      string   `json:"website"`
		Emails       []string `json:"emails"`
		ContactForm  string   `json:"contact_form"`
		FacebookPage string   `json:"facebook_page"`
		LogoURL      string   `json:"logo_url"`
		OwnerInfo    string   `json:"owner_info"`
	} `json:"profile"`
	CacheStatus string `json:"cache_status"`
	Timing      *struct {
		TotalMs int64 `json:"total_ms"`
	} `json:"timing"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// batchResponse mirrors the Prospect batch API response.
type batchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// batchStatusResponse mirrors the Prospect batch status API response.
type batchStatusResponse struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Completed int               `json:"completed"`
	Total     int               `json:"total"`
	Results   []json.RawMessage `json:"results"`
}

func main() {
	apiURL := os.Getenv("PROSPECT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("PROSPECT_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "PROSPECT_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"prospect",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	profileTool := mcp.NewTool("profile_company",
		mcp.WithDescription("Profile one company's web presence: verified website, contact emails, contact form, Facebook page and logo. Optionally extracts owner/founder details."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The company's business name"),
		),
		mcp.WithString("address",
			mcp.Description("Street address, improves search and verification accuracy"),
		),
		mcp.WithString("phone",
			mcp.Description("Phone number, carried into the profile context"),
		),
		mcp.WithString("website",
			mcp.Description("Known website URL, skips discovery and profiles it directly"),
		),
		mcp.WithBoolean("owner_info",
			mcp.Description("Extract owner/founder details from the homepage via the LLM"),
		),
		mcp.WithNumber("max_age",
			mcp.Description("Accept a cached profile up to this many seconds old (0 = always re-profile)"),
		),
	)
	s.AddTool(profileTool, handleProfileCompany(apiURL, apiKey))

	// batch_profile tool
	batchProfileTool := mcp.NewTool("batch_profile",
		mcp.WithDescription("Profile many companies in one batch job and wait for the results. Companies are paced against search and LLM rate limits, so large batches take minutes."),
		mcp.WithString("companies",
			mcp.Required(),
			mcp.Description(`JSON array of company objects: [{"name": "...", "address": "...", "phone": "...", "website": "..."}]`),
		),
		mcp.WithBoolean("owner_info",
			mcp.Description("Extract owner/founder details for every company"),
		),
	)
	s.AddTool(batchProfileTool, handleBatchProfile(apiURL, apiKey))

	// batch_status tool
	batchStatusTool := mcp.NewTool("batch_status",
		mcp.WithDescription("Check the status of a batch profiling job without waiting for it to finish."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The batch job ID returned when the batch was created"),
		),
	)
	s.AddTool(batchStatusTool, handleBatchStatus(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the Prospect API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// apiGet sends a GET request to the Prospect API and returns the response body.
func apiGet(ctx context.Context, client *http.Client, apiURL, apiKey, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollJobCompletion polls a job endpoint until status is no longer "processing" or context is cancelled.
func pollJobCompletion(ctx context.Context, client *http.Client, apiURL, apiKey, endpoint string) ([]byte, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			body, err := apiGet(ctx, client, apiURL, apiKey, endpoint)
			if err != nil {
				return nil, fmt.Errorf("poll request failed: %w", err)
			}

			// Quick check if still processing.
			var status struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}

			if status.Status != "processing" {
				return body, nil
			}
		}
	}
}

func handleProfileCompany(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 180 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError("name is required"), nil
		}

		reqBody := profileRequest{
			Name:      name,
			Address:   request.GetString("address", ""),
			Phone:     request.GetString("phone", ""),
			Website:   request.GetString("website", ""),
			MaxAge:    request.GetInt("max_age", 0),
			OwnerInfo: request.GetBool("owner_info", false),
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/profile", reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("profile request failed: %v", err)), nil
		}

		var profResp profileResponse
		if err := json.Unmarshal(respBody, &profResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !profResp.Success {
			errMsg := "profiling failed"
			if profResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", profResp.Error.Code, profResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		return mcp.NewToolResultText(formatProfile(&profResp)), nil
	}
}

func handleBatchProfile(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		companiesStr, err := request.RequireString("companies")
		if err != nil {
			return mcp.NewToolResultError("companies is required"), nil
		}

		// Validate companies is a JSON array of request objects.
		var companies []profileRequest
		if err := json.Unmarshal([]byte(companiesStr), &companies); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("companies must be a JSON array of objects: %v", err)), nil
		}
		if len(companies) == 0 {
			return mcp.NewToolResultError("companies must not be empty"), nil
		}

		payload := map[string]interface{}{
			"companies": companies,
			"options": map[string]interface{}{
				"owner_info": request.GetBool("owner_info", false),
			},
		}

		// POST to create batch job.
		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/batch/profiles", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("batch request failed: %v", err)), nil
		}

		var batchResp batchResponse
		if err := json.Unmarshal(respBody, &batchResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch response: %v", err)), nil
		}

		if batchResp.ID == "" {
			return mcp.NewToolResultError("batch job creation failed"), nil
		}

		// Poll for completion.
		resultBody, err := pollJobCompletion(ctx, client, apiURL, apiKey, "/api/v1/batch/profiles/"+batchResp.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling batch job failed: %v", err)), nil
		}

		var statusResp batchStatusResponse
		if err := json.Unmarshal(resultBody, &statusResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch status: %v", err)), nil
		}

		return mcp.NewToolResultText(formatBatchStatus(&statusResp)), nil
	}
}

func handleBatchStatus(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		respBody, err := apiGet(ctx, client, apiURL, apiKey, "/api/v1/batch/profiles/"+id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("status request failed: %v", err)), nil
		}

		var statusResp batchStatusResponse
		if err := json.Unmarshal(respBody, &statusResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse status response: %v", err)), nil
		}

		if statusResp.ID == "" {
			return mcp.NewToolResultError("batch job not found"), nil
		}

		if statusResp.Status == "processing" {
			return mcp.NewToolResultText(fmt.Sprintf("Batch %s: processing (%d/%d completed)",
				statusResp.ID, statusResp.Completed, statusResp.Total)), nil
		}
		return mcp.NewToolResultText(formatBatchStatus(&statusResp)), nil
	}
}

// formatProfile renders one profile response as readable text.
func formatProfile(resp *profileResponse) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company: %s\n", resp.Company.Name))
	if resp.Profile == nil || resp.Profile.Website == "" {
		sb.WriteString("No website found.\n")
		return sb.String()
	}
	p := resp.Profile
	sb.WriteString(fmt.Sprintf("Website: %s\n", p.Website))
	if len(p.Emails) > 0 {
		sb.WriteString(fmt.Sprintf("Emails: %s\n", strings.Join(p.Emails, ", ")))
	}
	if p.ContactForm != "" {
		sb.WriteString(fmt.Sprintf("Contact form: %s\n", p.ContactForm))
	}
	if p.FacebookPage != "" {
		sb.WriteString(fmt.Sprintf("Facebook: %s\n", p.FacebookPage))
	}
	if p.LogoURL != "" {
		sb.WriteString(fmt.Sprintf("Logo: %s\n", p.LogoURL))
	}
	if p.OwnerInfo != "" {
		sb.WriteString(fmt.Sprintf("Owner info: %s\n", p.OwnerInfo))
	}
	if resp.CacheStatus != "" {
		sb.WriteString(fmt.Sprintf("(cache %s)\n", resp.CacheStatus))
	}
	return sb.String()
}

// formatBatchStatus renders a finished batch as one block per company.
func formatBatchStatus(status *batchStatusResponse) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Batch %s: %s (%d/%d completed)\n\n", status.ID, status.Status, status.Completed, status.Total))

	for i, raw := range status.Results {
		var pr profileResponse
		if err := json.Unmarshal(raw, &pr); err != nil {
			sb.WriteString(fmt.Sprintf("--- [%d] parse error ---\n\n", i+1))
			continue
		}
		if pr.Success {
			sb.WriteString(fmt.Sprintf("--- [%d] ---\n%s\n", i+1, formatProfile(&pr)))
		} else {
			errMsg := "unknown error"
			if pr.Error != nil {
				errMsg = pr.Error.Message
			}
			sb.WriteString(fmt.Sprintf("--- [%d] %s FAILED: %s ---\n\n", i+1, pr.Company.Name, errMsg))
		}
	}

	return sb.String()
}
