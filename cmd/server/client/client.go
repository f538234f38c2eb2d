// Package client provides commands that call a running equipment totals server
package client

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/equip-api/internal/handlers/equipment/v1alpha1"
)

var (
	// Connection flags
	serverAddr string
	timeout    time.Duration
)

// ClientCmd is the root command for all client commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Call a running equipment totals server",
	Long:  `Client commands send real gRPC requests to the TotalsService and print the responses as JSON.`,
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	ClientCmd.AddCommand(createSetCmd)
	ClientCmd.AddCommand(dispatchCmd)
	ClientCmd.AddCommand(getTotalsCmd)
	ClientCmd.AddCommand(recalculateCmd)
	ClientCmd.AddCommand(saveSetCmd)
}

// createTotalsClient dials the server
func createTotalsClient() (v1alpha1.TotalsServiceClient, func(), error) {
	conn, err := grpc.NewClient(serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	cleanup := func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}

	return v1alpha1.NewTotalsServiceClient(conn), cleanup, nil
}

func setIDRequest(setID string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"set_id": structpb.NewStringValue(setID),
	}}
}

func printResponse(w io.Writer, resp *structpb.Struct) error {
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to render response: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
