package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"projectsearch/internal/app"
	"projectsearch/internal/model"
)

var (
	topK     int
	useModel bool
	asJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text...]",
	Short: "Run a natural-language project query",
	Example: `  searchctl query "3BHK flat in Pune under 1.2 Cr"
  searchctl query --top-k 3 --json "ready to move 2bhk in baner with gym"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx := cmd.Context()
		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		resp, err := a.Service.HandleQuery(ctx, strings.Join(args, " "), useModel, topK)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}
		printResponse(resp)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show what the dataset contains",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		bold := color.New(color.Bold)
		bold.Printf("Projects:   ")
		fmt.Println(a.Dataset.Len())
		bold.Printf("Cities:     ")
		fmt.Println(strings.Join(a.Dataset.Cities(), ", "))
		bold.Printf("Localities: ")
		fmt.Println(strings.Join(a.Dataset.Localities(), ", "))
		return nil
	},
}

func init() {
	queryCmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of results (0 uses the configured default)")
	queryCmd.Flags().BoolVarP(&useModel, "model", "m", false, "parse the query with the external model when configured")
	queryCmd.Flags().BoolVar(&asJSON, "json", false, "print the raw response as JSON")
}

func printResponse(resp *model.QueryResponse) {
	header := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	header.Println(resp.Summary)
	dim.Printf("parser=%s results=%d took=%dms\n", resp.Parser, len(resp.Results), resp.Took)
	if len(resp.Relaxations) > 0 {
		yellow.Printf("relaxed: %s\n", strings.Join(resp.Relaxations, " -> "))
	}
	fmt.Println()

	for i, card := range resp.Cards {
		green.Printf("%d. %s", i+1, card.Title)
		fmt.Printf("  %s\n", card.Price)
		fmt.Printf("   %s · %s · %s\n", card.ProjectName, card.CityLocality, card.Possession)
		if len(card.Amenities) > 0 {
			dim.Printf("   %s\n", strings.Join(card.Amenities, ", "))
		}
		dim.Printf("   %s  (score %.1f)\n", card.CTA, card.RelevanceScore)
	}
}
