package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/config"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/conversations"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/presenter"
	convtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/conversations"
)

// ConversationListConfig holds configuration for the conversation list command
type ConversationListConfig struct {
	StartDate  string
	EndDate    string
	Search     string
	AnalysisID string
	Limit      int
	Offset     int
	SortBy     string
	SortOrder  string
	JSONOutput bool
}

// NewConversationListConfig creates a new ConversationListConfig with default values
func NewConversationListConfig() *ConversationListConfig {
	return &ConversationListConfig{
		SortBy:    "updated",
		SortOrder: "desc",
	}
}

var conversationCmd = &cobra.Command{
	Use:   "conversation",
	Short: "Manage stored cover letter conversations",
}

var conversationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		listConfig, err := getConversationListConfigFromFlags(cmd)
		if err != nil {
			return err
		}

		service, ctx, err := openService(cmd)
		if err != nil {
			return err
		}
		defer service.Close()

		options, err := listConfig.queryOptions()
		if err != nil {
			return err
		}

		summaries, err := service.Query(ctx, options)
		if err != nil {
			return err
		}

		if listConfig.JSONOutput {
			data, err := json.MarshalIndent(summaries, "", "  ")
			if err != nil {
				return errors.Wrap(err, "failed to marshal summaries")
			}
			fmt.Println(string(data))
			return nil
		}

		if len(summaries) == 0 {
			presenter.Info("No conversations found")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tJOB\tMESSAGES\tFIRST INSTRUCTION\tUPDATED")
		for _, summary := range summaries {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
				summary.ID,
				summary.JobTitle,
				summary.MessageCount,
				summary.FirstInstruction,
				summary.UpdatedAt.Format(time.RFC3339),
			)
		}
		return tw.Flush()
	},
}

var conversationShowCmd = &cobra.Command{
	Use:   "show [conversation-id]",
	Short: "Show a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, ctx, err := openService(cmd)
		if err != nil {
			return err
		}
		defer service.Close()

		record, err := service.Get(ctx, args[0])
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			data, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return errors.Wrap(err, "failed to marshal conversation")
			}
			fmt.Println(string(data))
			return nil
		}

		printConversation(record)
		return nil
	},
}

var conversationDeleteCmd = &cobra.Command{
	Use:   "delete [conversation-id]",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, ctx, err := openService(cmd)
		if err != nil {
			return err
		}
		defer service.Close()

		if noConfirm, _ := cmd.Flags().GetBool("no-confirm"); !noConfirm {
			answer := presenter.Prompt(fmt.Sprintf("Delete conversation %s?", args[0]), "y", "N")
			if !strings.EqualFold(answer, "y") {
				presenter.Info("Aborted")
				return nil
			}
		}

		if err := service.Delete(ctx, args[0]); err != nil {
			return err
		}
		presenter.Success("Deleted conversation " + args[0])
		return nil
	},
}

var conversationEditsCmd = &cobra.Command{
	Use:   "edits [conversation-id]",
	Short: "Show the manual edit history of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, ctx, err := openService(cmd)
		if err != nil {
			return err
		}
		defer service.Close()

		record, err := service.Get(ctx, args[0])
		if err != nil {
			return err
		}

		if len(record.EditHistory) == 0 {
			presenter.Info("No manual edits recorded")
			return nil
		}

		for i, snapshot := range record.EditHistory {
			presenter.Section(fmt.Sprintf("Edit pass %d (%s)", i+1, snapshot.Timestamp.Format(time.RFC3339)))
			for _, edit := range snapshot.Edits {
				fmt.Printf("  %s: %q\n", edit.Type, edit.Value)
			}
		}
		return nil
	},
}

func init() {
	conversationListCmd.Flags().String("start", "", "only show conversations updated after this date (YYYY-MM-DD)")
	conversationListCmd.Flags().String("end", "", "only show conversations updated before this date (YYYY-MM-DD)")
	conversationListCmd.Flags().String("search", "", "filter by text in the job title or messages")
	conversationListCmd.Flags().String("analysis-id", "", "filter by anchoring analysis")
	conversationListCmd.Flags().Int("limit", 0, "maximum number of results")
	conversationListCmd.Flags().Int("offset", 0, "offset for pagination")
	conversationListCmd.Flags().String("sort-by", "updated", "sort field (updated, created or messages)")
	conversationListCmd.Flags().String("sort-order", "desc", "sort order (asc or desc)")
	conversationListCmd.Flags().Bool("json", false, "output as JSON")

	conversationShowCmd.Flags().Bool("json", false, "output as JSON")
	conversationDeleteCmd.Flags().Bool("no-confirm", false, "skip the confirmation prompt")

	conversationCmd.AddCommand(conversationListCmd)
	conversationCmd.AddCommand(conversationShowCmd)
	conversationCmd.AddCommand(conversationDeleteCmd)
	conversationCmd.AddCommand(conversationEditsCmd)
}

func openService(cmd *cobra.Command) (*conversations.Service, context.Context, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	service, err := conversations.NewServiceFromConfig(ctx, &cfg.Store)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to initialize conversation store")
	}
	return service, ctx, nil
}

func getConversationListConfigFromFlags(cmd *cobra.Command) (*ConversationListConfig, error) {
	listConfig := NewConversationListConfig()

	listConfig.StartDate, _ = cmd.Flags().GetString("start")
	listConfig.EndDate, _ = cmd.Flags().GetString("end")
	listConfig.Search, _ = cmd.Flags().GetString("search")
	listConfig.AnalysisID, _ = cmd.Flags().GetString("analysis-id")
	listConfig.Limit, _ = cmd.Flags().GetInt("limit")
	listConfig.Offset, _ = cmd.Flags().GetInt("offset")
	listConfig.SortBy, _ = cmd.Flags().GetString("sort-by")
	listConfig.SortOrder, _ = cmd.Flags().GetString("sort-order")
	listConfig.JSONOutput, _ = cmd.Flags().GetBool("json")

	return listConfig, nil
}

func (c *ConversationListConfig) queryOptions() (convtypes.QueryOptions, error) {
	options := convtypes.QueryOptions{
		SearchTerm: c.Search,
		AnalysisID: c.AnalysisID,
		Limit:      c.Limit,
		Offset:     c.Offset,
		SortBy:     c.SortBy,
		SortOrder:  c.SortOrder,
	}

	if c.StartDate != "" {
		start, err := time.Parse("2006-01-02", c.StartDate)
		if err != nil {
			return options, errors.Wrap(err, "invalid start date")
		}
		options.StartDate = &start
	}
	if c.EndDate != "" {
		end, err := time.Parse("2006-01-02", c.EndDate)
		if err != nil {
			return options, errors.Wrap(err, "invalid end date")
		}
		// Make the end date inclusive.
		end = end.Add(24*time.Hour - time.Nanosecond)
		options.EndDate = &end
	}

	return options, nil
}

func printConversation(record convtypes.ConversationRecord) {
	presenter.Section("Conversation " + record.ID)
	presenter.Info("Analysis: " + record.AnalysisID)
	if title := record.Core.Analysis.JobPosting.Title; title != "" {
		presenter.Info("Job: " + title)
	}
	if record.CompressedState != nil {
		presenter.Info(fmt.Sprintf("Compression: %s (%d iterations)",
			record.CompressedState.CompressionLevel, record.CompressedState.TotalIterations))
	}
	presenter.Separator()

	for _, msg := range record.Messages {
		fmt.Printf("[%s] %s\n", strings.ToUpper(string(msg.Role)), msg.Timestamp.Format(time.RFC3339))
		fmt.Println(msg.Content)
		fmt.Println()
	}

	if record.CurrentContent != "" {
		presenter.Section("Current Letter")
		presenter.Info(record.CurrentContent)
	}
}
