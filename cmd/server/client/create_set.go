package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/equip-api/internal/store"
)

var setFile string

var createSetCmd = &cobra.Command{
	Use:   "create-set",
	Short: "Create a set from a document file",
	Long:  `Read a set document (.yaml, .yml or .json) and register it with the server.`,
	RunE:  runCreateSet,
}

func init() {
	createSetCmd.Flags().StringVar(&setFile, "file", "", "Set document (required)")
	_ = createSetCmd.MarkFlagRequired("file") // nolint:errcheck // safe to ignore in init
}

func runCreateSet(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(setFile)
	if err != nil {
		return fmt.Errorf("failed to read set document: %w", err)
	}

	format := store.FormatYAML
	if strings.EqualFold(filepath.Ext(setFile), ".json") {
		format = store.FormatJSON
	}
	doc, err := store.DecodeDocument(data, format)
	if err != nil {
		return err
	}

	// Round-trip through JSON so the request carries the document's JSON field names
	jsonData, err := store.EncodeDocument(doc, store.FormatJSON)
	if err != nil {
		return err
	}
	docStruct := &structpb.Struct{}
	if err := docStruct.UnmarshalJSON(jsonData); err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	client, cleanup, err := createTotalsClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.CreateSet(ctx, &structpb.Struct{Fields: map[string]*structpb.Value{
		"document": structpb.NewStructValue(docStruct),
	}})
	if err != nil {
		return fmt.Errorf("failed to create set: %w", err)
	}

	return printResponse(cmd.OutOrStdout(), resp)
}
