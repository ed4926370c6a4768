package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kalambet/callhighlights/internal/api"
	"github.com/kalambet/callhighlights/internal/calls"
	"github.com/kalambet/callhighlights/internal/config"
	"github.com/kalambet/callhighlights/internal/insights"
	"github.com/kalambet/callhighlights/internal/render"
	"github.com/kalambet/callhighlights/internal/storage"
	"github.com/kalambet/callhighlights/internal/theme"
	"github.com/kalambet/callhighlights/internal/transcript"
)

// --- add ---

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a call transcript",
	Long: `Save a call transcript.

Examples:
  callhighlights add --company Acme --text "Discussed the renewal"
  callhighlights add --company Acme --date 2025-03-03 --file ./call.txt
  callhighlights add --company Beta --file ./minutes.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")
		date, _ := cmd.Flags().GetString("date")
		company, _ := cmd.Flags().GetString("company")

		req, err := buildAddRequest(date, company, text, file)
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		rec, err := addCall(cmd.Context(), client, req)
		if err != nil {
			return err
		}

		printSuccess("Saved call %d (%s, %s, %d words)", rec.ID, rec.Company, rec.Date, insights.WordCount(rec.Transcript))
		return nil
	},
}

func init() {
	addCmd.Flags().String("text", "", "transcript text")
	addCmd.Flags().String("file", "", "read the transcript from a text or PDF file")
	addCmd.Flags().String("date", "", "call date as YYYY-MM-DD (default today)")
	addCmd.Flags().String("company", "", "company the call was with (default Unknown)")
	addCmd.MarkFlagsMutuallyExclusive("text", "file")
}

func buildAddRequest(date, company, text, file string) (api.CreateCallRequest, error) {
	if text == "" && file == "" {
		return api.CreateCallRequest{}, fmt.Errorf("one of --text or --file is required")
	}
	if file != "" {
		t, err := transcript.ReadFile(file)
		if err != nil {
			return api.CreateCallRequest{}, err
		}
		text = t
	}
	return api.CreateCallRequest{Date: date, Company: company, Transcript: text}, nil
}

func addCall(ctx context.Context, client *apiClient, req api.CreateCallRequest) (calls.CallRecord, error) {
	resp, err := client.post(ctx, "/calls", req)
	if err != nil {
		return calls.CallRecord{}, err
	}
	var rec calls.CallRecord
	if err := decodeJSON(resp, &rec); err != nil {
		return calls.CallRecord{}, err
	}
	return rec, nil
}

// --- list ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved calls, grouped by company",
	RunE: func(cmd *cobra.Command, args []string) error {
		flat, _ := cmd.Flags().GetBool("flat")
		full, _ := cmd.Flags().GetBool("full")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		records, err := fetchCalls(cmd.Context(), client)
		if err != nil {
			return err
		}

		mode := render.ModeGrouped
		if flat {
			mode = render.ModeFlat
		}
		return render.Text(stdout, render.Build(records, mode), insights.Summarize(records), full)
	},
}

func init() {
	listCmd.Flags().Bool("flat", false, "list newest first instead of grouping by company")
	listCmd.Flags().Bool("full", false, "print whole transcripts")
}

func fetchCalls(ctx context.Context, client *apiClient) ([]calls.CallRecord, error) {
	resp, err := client.get(ctx, "/calls")
	if err != nil {
		return nil, err
	}
	var records []calls.CallRecord
	if err := decodeJSON(resp, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// --- delete ---

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid call id %q", args[0])
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/calls/"+strconv.FormatInt(id, 10))
		if err != nil {
			return err
		}
		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Deleted call %d", id)
		return nil
	},
}

// --- insights ---

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show call totals and the most active weekday",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/insights")
		if err != nil {
			return err
		}
		var s insights.Summary
		if err := decodeJSON(resp, &s); err != nil {
			return err
		}

		printInsights(stdout, s)
		return nil
	},
}

func printInsights(w io.Writer, s insights.Summary) {
	fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "Total Calls:"), humanize.Comma(int64(s.TotalCalls)))
	fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "Total Words:"), humanize.Comma(int64(s.TotalWords)))
	fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "Avg Words/Call:"), humanize.Comma(int64(s.AvgWords)))
	fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "Most Active Day:"), s.MostActiveDay)
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all calls as JSON or YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		if format != "json" && format != "yaml" {
			return fmt.Errorf("unsupported format %q (want json or yaml)", format)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		records, err := fetchCalls(cmd.Context(), client)
		if err != nil {
			return err
		}

		w := stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		if err := exportCalls(w, records, format); err != nil {
			return err
		}

		if output != "" {
			printSuccess("Exported %d calls to %s", len(records), output)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "json", "output format: json or yaml")
	exportCmd.Flags().String("output", "", "output file path (default: stdout)")
}

func exportCalls(w io.Writer, records []calls.CallRecord, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// --- data ---

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Manage stored data",
}

var dataPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete all saved calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			printWarning("This will delete ALL saved calls. Use --confirm to proceed.")
			return nil
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Deleting calls...")
		resp, err := client.delete(cmd.Context(), "/calls")
		if err != nil {
			return err
		}
		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("All calls purged")
		return nil
	},
}

var dataKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the storage keys in the data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStorage(func(kv *storage.Store) error {
			return listKeys(stdout, kv)
		})
	},
}

func init() {
	dataPurgeCmd.Flags().Bool("confirm", false, "confirm data purge")
	dataCmd.AddCommand(dataPurgeCmd)
	dataCmd.AddCommand(dataKeysCmd)
}

func listKeys(w io.Writer, kv *storage.Store) error {
	keys, err := kv.Keys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Fprintln(w, "No stored data.")
		return nil
	}
	for _, k := range keys {
		v, _, err := kv.GetItem(k)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s  %s\n", k, humanize.Bytes(uint64(len(v))))
	}
	return nil
}

// --- theme ---

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or switch the page theme",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStorage(func(kv *storage.Store) error {
			fmt.Fprintln(stdout, theme.NewStore(kv).Get())
			return nil
		})
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStorage(func(kv *storage.Store) error {
			t, err := theme.NewStore(kv).Toggle()
			if err != nil {
				return err
			}
			printSuccess("Theme set to %s %s", t, t.Icon())
			return nil
		})
	},
}

func init() {
	themeCmd.AddCommand(themeToggleCmd)
}

// withStorage opens the data directory directly for commands that do not go
// through the API.
func withStorage(fn func(*storage.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	kv, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer kv.Close()
	return fn(kv)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(stdout, "  %s = %s  (%s)\n", colorize(colorBold, k.Key), k.Value, k.EnvVar)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Set a configuration value",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.ValidKeys(),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:       "unset <key>",
	Short:     "Remove a configuration value so the default applies",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.ValidKeys(),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}

		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
