package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	dispatchSetID   string
	dispatchType    string
	dispatchPayload string
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Dispatch a mutation event to a set",
	Long: `Send one mutation event, for example:

  equip-api client dispatch --set-id set-1 --type item_selected \
    --payload '{"id":"b3","collection_id":"col-pack"}'`,
	RunE: runDispatch,
}

func init() {
	dispatchCmd.Flags().StringVar(&dispatchSetID, "set-id", "", "Set ID (required)")
	dispatchCmd.Flags().StringVar(&dispatchType, "type", "", "Event type (required)")
	dispatchCmd.Flags().StringVar(&dispatchPayload, "payload", "", "Event payload as a JSON object")
	_ = dispatchCmd.MarkFlagRequired("set-id") // nolint:errcheck // safe to ignore in init
	_ = dispatchCmd.MarkFlagRequired("type")   // nolint:errcheck // safe to ignore in init
}

func runDispatch(cmd *cobra.Command, _ []string) error {
	req := setIDRequest(dispatchSetID)
	req.Fields["type"] = structpb.NewStringValue(dispatchType)

	if dispatchPayload != "" {
		payload := &structpb.Struct{}
		if err := payload.UnmarshalJSON([]byte(dispatchPayload)); err != nil {
			return fmt.Errorf("payload must be a JSON object: %w", err)
		}
		req.Fields["payload"] = structpb.NewStructValue(payload)
	}

	client, cleanup, err := createTotalsClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Dispatch(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to dispatch %s: %w", dispatchType, err)
	}

	return printResponse(cmd.OutOrStdout(), resp)
}
