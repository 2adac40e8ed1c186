package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lead-agent/prospect/models"
)

var profileCommand = &cobra.Command{
	Use:   "profile",
	Short: "Profile a single company",
	Long: `Discovers and extracts one company's web presence and prints it.
With --website the discovery step is skipped and that site is profiled
directly.`,
	RunE: runProfileCmd,
}

var (
	profileName      string
	profileAddress   string
	profilePhone     string
	profileWebsite   string
	profileOwnerInfo bool
	profileJSON      bool
	profileVerbose   bool
)

func init() {
	profileCommand.Flags().StringVarP(&profileName, "name", "n", "", "Company name (required)")
	profileCommand.Flags().StringVarP(&profileAddress, "address", "a", "", "Street address, sharpens search and verification")
	profileCommand.Flags().StringVar(&profilePhone, "phone", "", "Phone number, carried into the profile context")
	profileCommand.Flags().StringVarP(&profileWebsite, "website", "w", "", "Known website, skips discovery")
	profileCommand.Flags().BoolVar(&profileOwnerInfo, "owner-info", false, "Extract owner/founder details via the LLM")
	profileCommand.Flags().BoolVar(&profileJSON, "json", false, "Print the profile as JSON")
	profileCommand.Flags().BoolVarP(&profileVerbose, "verbose", "v", false, "Print debug logging")

	_ = profileCommand.MarkFlagRequired("name")

	rootCmd.AddCommand(profileCommand)
}

func runProfileCmd(cmd *cobra.Command, _ []string) error {
	initCLILogger(profileVerbose)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(profileOwnerInfo, time.Second)
	if err != nil {
		return err
	}

	company := models.Company{
		Name:    profileName,
		Address: profileAddress,
		Phone:   profilePhone,
	}
	profile, timing, err := p.ProcessOne(ctx, company, profileWebsite)
	if err != nil {
		return err
	}

	if profileJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	}

	printField := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Printf("%-14s %s\n", label+":", value)
	}
	printField("Website", profile.Website)
	for i, email := range profile.Emails {
		if i == 0 {
			printField("Emails", email)
		} else {
			printField("", email)
		}
	}
	if len(profile.Emails) == 0 {
		printField("Emails", "")
	}
	printField("Contact form", profile.ContactForm)
	printField("Facebook", profile.FacebookPage)
	printField("Logo", profile.LogoURL)
	if profileOwnerInfo {
		printField("Owner info", profile.OwnerInfo)
	}
	fmt.Printf("\nDone in %dms (search %dms, fetch %dms, extract %dms)\n",
		timing.TotalMs, timing.SearchMs, timing.FetchMs, timing.ExtractMs)
	return nil
}
