package client

import (
	"bytes"
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"

	"github.com/KirkDiggler/equip-api/internal/handlers/equipment/v1alpha1"
	equipmentset "github.com/KirkDiggler/equip-api/internal/repositories/equipment_set"
	"github.com/KirkDiggler/equip-api/internal/services/sets"
	"github.com/KirkDiggler/equip-api/internal/testutils"
)

type ClientCommandsTestSuite struct {
	suite.Suite
	server *grpc.Server
}

func TestClientCommandsSuite(t *testing.T) {
	suite.Run(t, new(ClientCommandsTestSuite))
}

func (s *ClientCommandsTestSuite) SetupTest() {
	svc, err := sets.NewService(&sets.Config{
		Repository:       equipmentset.NewInMemory(),
		LimitDefinitions: testutils.TestLimitDefinitions(),
	})
	s.Require().NoError(err)
	handler, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{SetService: svc})
	s.Require().NoError(err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)

	s.server = grpc.NewServer()
	v1alpha1.RegisterTotalsServiceServer(s.server, handler)
	go func() {
		_ = s.server.Serve(lis)
	}()

	serverAddr = lis.Addr().String()
}

func (s *ClientCommandsTestSuite) TearDownTest() {
	s.server.Stop()
}

func (s *ClientCommandsTestSuite) run(args ...string) map[string]any {
	var out bytes.Buffer
	ClientCmd.SetOut(&out)
	ClientCmd.SetArgs(args)
	s.Require().NoError(ClientCmd.Execute())

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(out.Bytes(), &resp))
	return resp
}

func (s *ClientCommandsTestSuite) TestCreateDispatchAndRead() {
	created := s.run("create-set", "--file", "../testdata/set.yaml", "--server", serverAddr)
	s.Equal("set-replay", created["set_id"])

	dispatched := s.run("dispatch",
		"--set-id", "set-replay",
		"--type", "item_selected",
		"--payload", `{"id":"b3","collection_id":"col-pack"}`,
		"--server", serverAddr)
	s.Len(dispatched["events"], 3)

	totals := s.run("get-totals", "--set-id", "set-replay", "--server", serverAddr)
	set := totals["document"].(map[string]any)["set"].(map[string]any)
	s.Equal(21.0, set["totals"].(map[string]any)["totals"].(map[string]any)["price"])

	recalculated := s.run("recalculate", "--set-id", "set-replay", "--server", serverAddr)
	s.Len(recalculated["events"], 4)

	saved := s.run("save-set", "--set-id", "set-replay", "--server", serverAddr)
	s.NotZero(saved["revision"])
}

func (s *ClientCommandsTestSuite) TestDispatch_RejectsBadPayload() {
	ClientCmd.SetArgs([]string{"dispatch", "--set-id", "x", "--type", "entry_moved", "--payload", "[1]", "--server", serverAddr})
	ClientCmd.SetErr(&bytes.Buffer{})
	s.Error(ClientCmd.Execute())
}
