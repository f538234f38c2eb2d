package sets_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
	"github.com/KirkDiggler/equip-api/internal/pkg/idgen"
	equipmentset "github.com/KirkDiggler/equip-api/internal/repositories/equipment_set"
	equipmentsetmock "github.com/KirkDiggler/equip-api/internal/repositories/equipment_set/mock"
	"github.com/KirkDiggler/equip-api/internal/services/sets"
	"github.com/KirkDiggler/equip-api/internal/testutils"
)

type RegistryTestSuite struct {
	suite.Suite
	ctx  context.Context
	repo *equipmentset.InMemoryRepository
	svc  sets.Service
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (s *RegistryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = equipmentset.NewInMemory()
	s.svc = s.newService(true)
}

func (s *RegistryTestSuite) newService(autoSave bool) sets.Service {
	svc, err := sets.NewService(&sets.Config{
		Repository:       s.repo,
		LimitDefinitions: testutils.TestLimitDefinitions(),
		GlobalLimits:     equipment.Limits{"weight": 20},
		AutoSave:         autoSave,
		SetIDs:           idgen.NewSequential("set"),
		EventIDs:         idgen.NewSequential("evt"),
	})
	s.Require().NoError(err)
	return svc
}

func (s *RegistryTestSuite) create() *sets.CreateOutput {
	out, err := s.svc.Create(s.ctx, &sets.CreateInput{Document: testutils.CreateTestDocument()})
	s.Require().NoError(err)
	return out
}

func (s *RegistryTestSuite) storedSetTotals(setID string) equipment.Totals {
	got, err := s.repo.Get(s.ctx, equipmentset.GetInput{ID: setID})
	s.Require().NoError(err)
	s.Require().NotNil(got.Document.Set.Totals)
	return got.Document.Set.Totals.Totals
}

func (s *RegistryTestSuite) TestNewService_Validation() {
	_, err := sets.NewService(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = sets.NewService(&sets.Config{})
	s.True(errors.IsInvalidArgument(err))

	_, err = sets.NewService(&sets.Config{
		Repository:       s.repo,
		LimitDefinitions: testutils.TestLimitDefinitions(),
		GlobalLimits:     equipment.Limits{"volume": 3},
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RegistryTestSuite) TestCreate() {
	out := s.create()

	s.Equal(testutils.TestSetID, out.SetID)
	s.Len(out.Events, 4)
	s.Equal(equipment.Totals{Price: 18, Weight: 9}, s.storedSetTotals(testutils.TestSetID))

	_, err := s.svc.Create(s.ctx, &sets.CreateInput{Document: testutils.CreateTestDocument()})
	s.True(errors.IsAlreadyExists(err))
}

func (s *RegistryTestSuite) TestCreate_AppliesDefaults() {
	doc := testutils.CreateTestDocument()
	doc.Set.ID = ""
	doc.Set.Limits = nil
	doc.LimitDefinitions = nil

	out, err := s.svc.Create(s.ctx, &sets.CreateInput{Document: doc})
	s.Require().NoError(err)
	s.Equal("set_1", out.SetID)
	s.Empty(doc.Set.ID, "the caller's document is not modified")

	got, err := s.svc.GetTotals(s.ctx, &sets.GetTotalsInput{SetID: out.SetID})
	s.Require().NoError(err)
	s.Equal(equipment.Limits{"weight": 20}, got.Document.Set.Limits)
	s.Equal(testutils.TestLimitDefinitions(), got.Document.LimitDefinitions)
}

func (s *RegistryTestSuite) TestCreate_InvalidDocument() {
	doc := testutils.CreateTestDocument()
	doc.Set.Limits = equipment.Limits{"volume": 1}

	_, err := s.svc.Create(s.ctx, &sets.CreateInput{Document: doc})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.svc.GetTotals(s.ctx, &sets.GetTotalsInput{SetID: testutils.TestSetID})
	s.True(errors.IsNotFound(err), "a rejected set is not registered")

	_, err = s.svc.Create(s.ctx, &sets.CreateInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RegistryTestSuite) TestDispatch_AutoSaves() {
	s.create()

	out, err := s.svc.Dispatch(s.ctx, &sets.DispatchInput{
		SetID: testutils.TestSetID,
		Event: equipment.ItemSelected{ItemID: "b3", CollectionID: testutils.PackCollectionID},
	})
	s.Require().NoError(err)
	s.Len(out.Events, 3)

	s.Equal(equipment.Totals{Price: 21, Weight: 11}, s.storedSetTotals(testutils.TestSetID))
}

func (s *RegistryTestSuite) TestDispatch_WithoutAutoSave() {
	s.svc = s.newService(false)
	s.create()

	_, err := s.svc.Dispatch(s.ctx, &sets.DispatchInput{
		SetID: testutils.TestSetID,
		Event: equipment.ItemSelected{ItemID: "b3", CollectionID: testutils.PackCollectionID},
	})
	s.Require().NoError(err)
	s.Equal(equipment.Totals{Price: 18, Weight: 9}, s.storedSetTotals(testutils.TestSetID))

	saved, err := s.svc.Save(s.ctx, &sets.SaveInput{SetID: testutils.TestSetID})
	s.Require().NoError(err)
	s.NotZero(saved.Revision)
	s.Equal(equipment.Totals{Price: 21, Weight: 11}, s.storedSetTotals(testutils.TestSetID))
}

func (s *RegistryTestSuite) TestDispatch_LoadsFromRepository() {
	_, err := s.repo.Save(s.ctx, equipmentset.SaveInput{Document: testutils.CreateTestDocument()})
	s.Require().NoError(err)

	out, err := s.svc.Dispatch(s.ctx, &sets.DispatchInput{
		SetID: testutils.TestSetID,
		Event: equipment.LimitsChanged{CollectionID: testutils.PackCollectionID, Limits: equipment.Limits{"weight": 2}},
	})
	s.Require().NoError(err)
	s.Equal([]equipment.EventType{
		equipment.EventCollectionTotalsUpdated,
		equipment.EventSetTotalsUpdated,
	}, []equipment.EventType{out.Events[0].Type(), out.Events[1].Type()})

	collections := out.Events[0].(equipment.CollectionTotalsUpdated).Collections
	s.True(collections[testutils.PackCollectionID].OverLimit["weight"])
}

func (s *RegistryTestSuite) TestDispatch_Errors() {
	_, err := s.svc.Dispatch(s.ctx, &sets.DispatchInput{SetID: "missing", Event: equipment.SetSettingsChanged{Name: "x"}})
	s.True(errors.IsNotFound(err))

	_, err = s.svc.Dispatch(s.ctx, &sets.DispatchInput{SetID: testutils.TestSetID})
	s.True(errors.IsInvalidArgument(err))

	s.create()
	_, err = s.svc.Dispatch(s.ctx, &sets.DispatchInput{
		SetID: testutils.TestSetID,
		Event: equipment.RecalculateVariant{VariantID: testutils.PackVariantID},
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RegistryTestSuite) TestLoad() {
	_, err := s.repo.Save(s.ctx, equipmentset.SaveInput{Document: testutils.CreateTestDocument()})
	s.Require().NoError(err)

	first, err := s.svc.Load(s.ctx, &sets.LoadInput{SetID: testutils.TestSetID})
	s.Require().NoError(err)
	s.True(first.Loaded)

	second, err := s.svc.Load(s.ctx, &sets.LoadInput{SetID: testutils.TestSetID})
	s.Require().NoError(err)
	s.False(second.Loaded)
	s.Equal(first.Revision, second.Revision)

	got, err := s.svc.GetTotals(s.ctx, &sets.GetTotalsInput{SetID: testutils.TestSetID})
	s.Require().NoError(err)
	s.Require().NotNil(got.Document.Set.Totals)
	s.Equal(equipment.Totals{Price: 18, Weight: 9}, got.Document.Set.Totals.Totals)
}

func (s *RegistryTestSuite) TestRecalculate() {
	s.create()

	out, err := s.svc.Recalculate(s.ctx, &sets.RecalculateInput{SetID: testutils.TestSetID})
	s.Require().NoError(err)
	s.Len(out.Events, 4)
}

func (s *RegistryTestSuite) TestSave_NotLoaded() {
	_, err := s.svc.Save(s.ctx, &sets.SaveInput{SetID: testutils.TestSetID})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *RegistryTestSuite) TestDelete() {
	s.create()

	_, err := s.svc.Delete(s.ctx, &sets.DeleteInput{SetID: testutils.TestSetID})
	s.Require().NoError(err)

	_, err = s.svc.GetTotals(s.ctx, &sets.GetTotalsInput{SetID: testutils.TestSetID})
	s.True(errors.IsNotFound(err))

	_, err = s.svc.Delete(s.ctx, &sets.DeleteInput{SetID: testutils.TestSetID})
	s.True(errors.IsNotFound(err))
}

func (s *RegistryTestSuite) TestConcurrentDispatch() {
	s.create()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			item := "b2"
			if i%2 == 0 {
				item = "b3"
			}
			_, err := s.svc.Dispatch(s.ctx, &sets.DispatchInput{
				SetID: testutils.TestSetID,
				Event: equipment.ItemSelected{ItemID: item, CollectionID: testutils.PackCollectionID},
			})
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	got, err := s.svc.GetTotals(s.ctx, &sets.GetTotalsInput{SetID: testutils.TestSetID})
	s.Require().NoError(err)
	s.Contains([]float64{18, 21}, got.Document.Set.Totals.Totals.Price)
}

type RegistryRepositoryErrorsTestSuite struct {
	suite.Suite
	ctx  context.Context
	ctrl *gomock.Controller
	repo *equipmentsetmock.MockRepository
	svc  sets.Service
}

func TestRegistryRepositoryErrorsSuite(t *testing.T) {
	suite.Run(t, new(RegistryRepositoryErrorsTestSuite))
}

func (s *RegistryRepositoryErrorsTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.repo = equipmentsetmock.NewMockRepository(s.ctrl)

	var err error
	s.svc, err = sets.NewService(&sets.Config{
		Repository:       s.repo,
		LimitDefinitions: testutils.TestLimitDefinitions(),
		AutoSave:         true,
	})
	s.Require().NoError(err)
}

func (s *RegistryRepositoryErrorsTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *RegistryRepositoryErrorsTestSuite) TestCreate_SaveFails() {
	s.repo.EXPECT().
		Get(s.ctx, equipmentset.GetInput{ID: testutils.TestSetID}).
		Return(nil, errors.NotFound("not found"))
	s.repo.EXPECT().
		Save(s.ctx, gomock.Any()).
		Return(nil, errors.New(errors.CodeUnavailable, "redis down"))

	_, err := s.svc.Create(s.ctx, &sets.CreateInput{Document: testutils.CreateTestDocument()})
	s.Require().Error(err)
	s.Equal(errors.CodeUnavailable, errors.GetCode(err))

	s.repo.EXPECT().
		Get(s.ctx, equipmentset.GetInput{ID: testutils.TestSetID}).
		Return(nil, errors.NotFound("not found"))
	_, err = s.svc.GetTotals(s.ctx, &sets.GetTotalsInput{SetID: testutils.TestSetID})
	s.True(errors.IsNotFound(err), "a set that failed to persist is not registered")
}

func (s *RegistryRepositoryErrorsTestSuite) TestCreate_LookupFails() {
	s.repo.EXPECT().
		Get(s.ctx, equipmentset.GetInput{ID: testutils.TestSetID}).
		Return(nil, errors.Internal("boom"))

	_, err := s.svc.Create(s.ctx, &sets.CreateInput{Document: testutils.CreateTestDocument()})
	s.True(errors.IsInternal(err))
}

func (s *RegistryRepositoryErrorsTestSuite) TestDispatch_SavesExportedDocument() {
	s.repo.EXPECT().
		Get(s.ctx, equipmentset.GetInput{ID: testutils.TestSetID}).
		Return(&equipmentset.GetOutput{Document: testutils.CreateTestDocument()}, nil)
	s.repo.EXPECT().
		Save(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input equipmentset.SaveInput) (*equipmentset.SaveOutput, error) {
			s.Equal("Renamed", input.Document.Set.Name)
			return &equipmentset.SaveOutput{}, nil
		})

	_, err := s.svc.Dispatch(s.ctx, &sets.DispatchInput{
		SetID: testutils.TestSetID,
		Event: equipment.SetSettingsChanged{Name: "Renamed"},
	})
	s.Require().NoError(err)
}
