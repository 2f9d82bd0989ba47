package apicmder

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pageza/worldchef/backend/internal/types"
)

const askLongDesc string = `Send one message to the chef and print the JSON response.

Examples:
  worldchef ask "Give me an easy Italian pasta recipe" --region european
  worldchef ask "Make it vegetarian" --history conversation.json`

const askShortDesc string = "Ask the chef a single question"

type askCommander struct {
	region      string
	historyPath string
}

// NewAskCmd runs one relay invocation from the terminal
func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.region, "region", "r", types.RegionAll, "Region the user is exploring")
	cmd.Flags().StringVar(&cmder.historyPath, "history", "", "JSON file holding prior conversation turns")

	return cmd
}

func (c *askCommander) run(cmd *cobra.Command, message string) error {
	req := types.ChatRequest{
		Message: message,
		Region:  c.region,
		History: []types.ConversationTurn{},
	}

	if c.historyPath != "" {
		data, err := os.ReadFile(c.historyPath)
		if err != nil {
			return fmt.Errorf("could not read history: %w", err)
		}
		if err := json.Unmarshal(data, &req.History); err != nil {
			return fmt.Errorf("could not parse history %s: %w", c.historyPath, err)
		}
		for i, turn := range req.History {
			if turn.Role != types.RoleUser && turn.Role != types.RoleAssistant {
				return fmt.Errorf("history turn %d has invalid role %q", i, turn.Role)
			}
		}
	}

	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	resp, err := a.relay.Handle(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
