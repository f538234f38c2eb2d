package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/equip-api/internal/handlers/equipment/v1alpha1"
)

var setID string

type setCall func(v1alpha1.TotalsServiceClient, context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error)

// newSetCommand builds a command that sends {set_id} to one method
func newSetCommand(use, short string, call setCall) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, cleanup, err := createTotalsClient()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			resp, err := call(client, ctx, setIDRequest(setID))
			if err != nil {
				return fmt.Errorf("%s failed: %w", use, err)
			}
			return printResponse(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&setID, "set-id", "", "Set ID (required)")
	_ = cmd.MarkFlagRequired("set-id") // nolint:errcheck // safe to ignore in init
	return cmd
}

var (
	getTotalsCmd   = newSetCommand("get-totals", "Print a set with its totals", v1alpha1.TotalsServiceClient.GetTotals)
	recalculateCmd = newSetCommand("recalculate", "Recompute every totals figure of a set", v1alpha1.TotalsServiceClient.Recalculate)
	saveSetCmd     = newSetCommand("save-set", "Persist a loaded set", v1alpha1.TotalsServiceClient.SaveSet)
)
