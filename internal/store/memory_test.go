package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
	"github.com/KirkDiggler/equip-api/internal/pkg/clock"
	"github.com/KirkDiggler/equip-api/internal/pkg/idgen"
	"github.com/KirkDiggler/equip-api/internal/store"
	"github.com/KirkDiggler/equip-api/internal/testutils"
)

type MemoryTestSuite struct {
	suite.Suite
	store *store.Memory
	clock *clock.Fixed
}

func TestMemorySuite(t *testing.T) {
	suite.Run(t, new(MemoryTestSuite))
}

func (s *MemoryTestSuite) SetupTest() {
	s.clock = clock.NewFixed(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))

	var err error
	s.store, err = store.NewMemory(&store.MemoryConfig{
		Document:    testutils.CreateTestDocument(),
		IDGenerator: idgen.NewSequential("evt"),
		Clock:       s.clock,
	})
	s.Require().NoError(err)
}

func (s *MemoryTestSuite) links(variantID string) []equipment.EntityLink {
	v, ok := s.store.GetVariant(variantID)
	s.Require().True(ok)
	return v.EntityLinks
}

func (s *MemoryTestSuite) TestImport() {
	s.Equal(uint64(1), s.store.Revision())
	s.Equal([]string{testutils.PackCollectionID, testutils.CampCollectionID}, s.store.GetCollectionOrder())
	s.Equal(equipment.Limits{"weight": 10}, s.store.GetGlobalLimits())
	s.Len(s.store.GetLimitDefinitions(), 2)

	selected, ok := s.store.GetSelectedVariantID(testutils.PackCollectionID)
	s.True(ok)
	s.Equal(testutils.PackVariantID, selected)

	// camp has no explicit selection and falls back to its first variant
	selected, ok = s.store.GetSelectedVariantID(testutils.CampCollectionID)
	s.True(ok)
	s.Equal(testutils.CampVariantID, selected)

	entries := s.store.GetEntriesByCollection(testutils.PackCollectionID)
	s.Require().Len(entries, 2)
	s.Equal(testutils.EntryAID, entries[0].ID)
	s.Equal(testutils.PackCollectionID, entries[0].CollectionID)
	s.Equal(testutils.EntryAID, entries[0].Items[0].EntryID)

	item, ok := s.store.FindItem(testutils.PackCollectionID, "b3")
	s.True(ok)
	s.Equal(8.0, item.Price)

	log := s.store.Log()
	s.Require().Len(log, 1)
	s.Equal(store.EventLogEntry{ID: "evt_1", Revision: 1, Kind: "import", At: s.clock.Now()}, log[0])
}

func (s *MemoryTestSuite) TestSnapshotIsStable() {
	before := s.store.Snapshot()
	variantBefore, _ := before.GetVariant(testutils.PackVariantID)

	s.Require().NoError(s.store.SelectItem(testutils.PackCollectionID, testutils.EntryBID, "b3"))

	s.Equal(uint64(1), before.Revision())
	s.Equal("b2", variantBefore.EntityLinks[1].SelectedItemID)
	s.Equal("b3", s.links(testutils.PackVariantID)[1].SelectedItemID)
	s.Equal(uint64(2), s.store.Revision())
}

func (s *MemoryTestSuite) TestSelectItem() {
	v, _ := s.store.GetVariant(testutils.PackVariantID)
	linksVersion := v.LinksVersion

	s.Require().NoError(s.store.SelectItem(testutils.PackCollectionID, testutils.EntryBID, "b3"))

	v, _ = s.store.GetVariant(testutils.PackVariantID)
	s.Greater(v.LinksVersion, linksVersion)
	s.Equal(s.store.Revision(), v.LinksVersion)

	s.Run("same selection is a no-op", func() {
		rev := s.store.Revision()
		s.Require().NoError(s.store.SelectItem(testutils.PackCollectionID, testutils.EntryBID, "b3"))
		s.Equal(rev, s.store.Revision())
	})

	s.Run("unlinked entry gets a link", func() {
		s.Require().NoError(s.store.SelectVariant(testutils.PackCollectionID, testutils.PackAltVariantID))
		s.Require().NoError(s.store.SelectItem(testutils.PackCollectionID, testutils.EntryBID, "b2"))
		s.Equal([]equipment.EntityLink{
			{EntryID: testutils.EntryAID, SelectedItemID: "a2"},
			{EntryID: testutils.EntryBID, SelectedItemID: "b2"},
		}, s.links(testutils.PackAltVariantID))
	})

	s.Run("item of another entry", func() {
		err := s.store.SelectItem(testutils.PackCollectionID, testutils.EntryBID, "a1")
		s.True(errors.IsNotFound(err))
	})

	s.Run("entry of another collection", func() {
		err := s.store.SelectItem(testutils.PackCollectionID, testutils.EntryCID, "c1")
		s.True(errors.IsNotFound(err))
	})
}

func (s *MemoryTestSuite) TestSelectItem_NoSelectedVariant() {
	s.Require().NoError(s.store.DeleteVariant(testutils.CampVariantID))
	rev := s.store.Revision()

	s.Require().NoError(s.store.SelectItem(testutils.CampCollectionID, testutils.EntryCID, "c1"))
	s.Equal(rev, s.store.Revision())
}

func (s *MemoryTestSuite) TestMoveEntry() {
	s.Require().NoError(s.store.MoveEntry(testutils.PackCollectionID, testutils.EntryBID, 0))
	s.Equal([]equipment.EntityLink{
		{EntryID: testutils.EntryBID, SelectedItemID: "b2"},
		{EntryID: testutils.EntryAID, SelectedItemID: "a1"},
	}, s.links(testutils.PackVariantID))

	s.Run("index past the end is clamped", func() {
		s.Require().NoError(s.store.MoveEntry(testutils.PackCollectionID, testutils.EntryBID, 99))
		s.Equal(testutils.EntryBID, s.links(testutils.PackVariantID)[1].EntryID)
	})

	s.Run("same index is a no-op", func() {
		rev := s.store.Revision()
		v, _ := s.store.GetVariant(testutils.PackVariantID)

		s.Require().NoError(s.store.MoveEntry(testutils.PackCollectionID, testutils.EntryBID, 5))

		after, _ := s.store.GetVariant(testutils.PackVariantID)
		s.Equal(rev, s.store.Revision())
		s.Same(v, after)
	})

	s.Run("negative index", func() {
		err := s.store.MoveEntry(testutils.PackCollectionID, testutils.EntryBID, -1)
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("unlinked entry", func() {
		err := s.store.MoveEntry(testutils.PackCollectionID, "entry-z", 0)
		s.True(errors.IsNotFound(err))
	})
}

func (s *MemoryTestSuite) TestReplaceItem() {
	coll, _ := s.store.GetCollection(testutils.PackCollectionID)
	entriesVersion := coll.EntriesVersion

	s.Require().NoError(s.store.ReplaceItem(equipment.Item{ID: "b2", CollectionID: testutils.PackCollectionID, Name: "Torch", Price: 6, Weight: 1}))

	item, ok := s.store.FindItem(testutils.PackCollectionID, "b2")
	s.Require().True(ok)
	s.Equal(6.0, item.Price)
	s.Equal(testutils.EntryBID, item.EntryID)

	coll, _ = s.store.GetCollection(testutils.PackCollectionID)
	s.Greater(coll.EntriesVersion, entriesVersion)

	camp, _ := s.store.GetCollection(testutils.CampCollectionID)
	s.Equal(uint64(1), camp.EntriesVersion, "other collections keep their version")

	s.Run("located without any parent id", func() {
		s.Require().NoError(s.store.ReplaceItem(equipment.Item{ID: "c1", Price: 4, Weight: 6}))
		item, _ := s.store.FindItem(testutils.CampCollectionID, "c1")
		s.Equal(4.0, item.Price)
	})

	s.Run("unknown item", func() {
		err := s.store.ReplaceItem(equipment.Item{ID: "zz"})
		s.True(errors.IsNotFound(err))
	})
}

func (s *MemoryTestSuite) TestMoveCollection() {
	s.Require().NoError(s.store.MoveCollection(testutils.CampCollectionID, 0))
	s.Equal([]string{testutils.CampCollectionID, testutils.PackCollectionID}, s.store.GetCollectionOrder())

	err := s.store.MoveCollection("col-unknown", 0)
	s.True(errors.IsNotFound(err))
}

func (s *MemoryTestSuite) TestCollectionLimits() {
	s.Require().NoError(s.store.SetCollectionLimits(testutils.PackCollectionID, equipment.Limits{"weight": 4, "price": 0}))
	coll, _ := s.store.GetCollection(testutils.PackCollectionID)
	s.Equal(equipment.Limits{"weight": 4}, coll.Limits)

	s.Run("all zero clears the override", func() {
		s.Require().NoError(s.store.SetCollectionLimits(testutils.PackCollectionID, equipment.Limits{"weight": 0}))
		coll, _ := s.store.GetCollection(testutils.PackCollectionID)
		s.Nil(coll.Limits)
	})

	s.Run("unknown limit name", func() {
		err := s.store.SetCollectionLimits(testutils.PackCollectionID, equipment.Limits{"volume": 3})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("negative value", func() {
		err := s.store.SetGlobalLimits(equipment.Limits{"weight": -1})
		s.True(errors.IsInvalidArgument(err))
	})
}

func (s *MemoryTestSuite) TestLimitDefinitions() {
	err := s.store.SetLimitDefinitions([]equipment.LimitDefinition{
		{Name: "weight", Dimension: equipment.DimensionWeight},
		{Name: "weight", Dimension: "volume"},
	})
	s.True(errors.IsInvalidArgument(err))

	s.Require().NoError(s.store.SetLimitDefinitions([]equipment.LimitDefinition{
		{Name: "carry", Dimension: equipment.DimensionWeight},
	}))
	s.Equal("carry", s.store.GetLimitDefinitions()[0].Name)
	s.Require().NoError(s.store.SetGlobalLimits(equipment.Limits{"carry": 20}))
}

func (s *MemoryTestSuite) TestPatchesKeepVersions() {
	v, _ := s.store.GetVariant(testutils.PackVariantID)
	coll, _ := s.store.GetCollection(testutils.PackCollectionID)

	totals := &equipment.VariantTotals{Totals: equipment.Totals{Price: 15, Weight: 3}}
	s.Require().NoError(s.store.PatchVariantTotals(testutils.PackVariantID, totals))
	s.Require().NoError(s.store.PatchCollectionTotals(map[string]equipment.CollectionTotals{
		testutils.PackCollectionID: {CollectionID: testutils.PackCollectionID, HasVariant: true},
		"col-gone":                 {CollectionID: "col-gone"},
	}))
	s.Require().NoError(s.store.PatchSetTotals(equipment.SetTotals{Totals: equipment.Totals{Price: 1}}))

	after, _ := s.store.GetVariant(testutils.PackVariantID)
	s.Same(totals, after.Totals)
	s.Equal(v.LinksVersion, after.LinksVersion)

	collAfter, _ := s.store.GetCollection(testutils.PackCollectionID)
	s.True(collAfter.Totals.HasVariant)
	s.Equal(coll.EntriesVersion, collAfter.EntriesVersion)
	s.Equal(1.0, s.store.GetSet().Totals.Totals.Price)

	err := s.store.PatchVariantTotals("var-gone", totals)
	s.True(errors.IsNotFound(err))
}

func (s *MemoryTestSuite) TestLifecycle() {
	s.Require().NoError(s.store.AddCollection(equipment.Collection{ID: "col-mule", Name: "Mule"}))
	s.Equal("col-mule", s.store.GetCollectionOrder()[2])

	s.Require().NoError(s.store.AddEntry(equipment.Entry{ID: "entry-d", CollectionID: "col-mule", Name: "Saddlebag"}))
	s.Require().NoError(s.store.AddItem(equipment.Item{ID: "d1", EntryID: "entry-d", Price: 2, Weight: 1}))
	s.Require().NoError(s.store.AddVariant(equipment.Variant{ID: "var-mule", CollectionID: "col-mule"}))
	s.Require().NoError(s.store.AddLink("var-mule", equipment.EntityLink{EntryID: "entry-d", SelectedItemID: "d1"}))

	selected, ok := s.store.GetSelectedVariantID("col-mule")
	s.True(ok, "first variant is selected")
	s.Equal("var-mule", selected)

	item, ok := s.store.FindItem("col-mule", "d1")
	s.True(ok)
	s.Equal("col-mule", item.CollectionID)

	s.Run("duplicates", func() {
		s.True(errors.IsAlreadyExists(s.store.AddCollection(equipment.Collection{ID: "col-mule"})))
		s.True(errors.IsAlreadyExists(s.store.AddItem(equipment.Item{ID: "d1", EntryID: "entry-d"})))
		s.True(errors.IsAlreadyExists(s.store.AddLink("var-mule", equipment.EntityLink{EntryID: "entry-d"})))
	})

	s.Run("update entry", func() {
		s.Require().NoError(s.store.UpdateEntry(equipment.Entry{
			ID:    "entry-d",
			Name:  "Panniers",
			Items: []equipment.Item{{ID: "d2", Price: 7}},
		}))
		e, _ := s.store.GetEntry("entry-d")
		s.Equal("Panniers", e.Name)
		s.Equal("entry-d", e.Items[0].EntryID)
		s.Equal("col-mule", e.Items[0].CollectionID)
	})

	s.Run("delete entry keeps links", func() {
		s.Require().NoError(s.store.DeleteEntry("entry-d"))
		s.Empty(s.store.GetEntriesByCollection("col-mule"))
		s.Len(s.links("var-mule"), 1)
	})

	s.Run("delete selected variant clears the selection", func() {
		s.Require().NoError(s.store.DeleteVariant("var-mule"))
		_, ok := s.store.GetSelectedVariantID("col-mule")
		s.False(ok)
		s.True(errors.IsNotFound(s.store.DeleteVariant("var-mule")))
	})

	s.Run("delete collection", func() {
		s.Require().NoError(s.store.DeleteCollection("col-mule"))
		s.Len(s.store.GetCollectionOrder(), 2)
		_, ok := s.store.GetCollection("col-mule")
		s.False(ok)
	})
}

func (s *MemoryTestSuite) TestErrorsIdentifyTheEntity() {
	var coded *errors.Error

	s.Require().True(errors.As(s.store.SelectVariant(testutils.PackCollectionID, "var-gone"), &coded))
	s.Equal(errors.CodeNotFound, coded.Code)
	s.Equal("variant var-gone not found", coded.Message)
	s.Equal(equipment.EntityTypeVariant, coded.Meta["entity_type"])
	s.Equal("var-gone", coded.Meta["entity_id"])

	s.Require().True(errors.As(s.store.SelectItem(testutils.PackCollectionID, testutils.EntryBID, "zz"), &coded))
	s.Equal("item zz not found in entry entry-b", coded.Message)
	s.Equal(equipment.EntityTypeItem, coded.Meta["entity_type"])
	s.Equal(testutils.EntryBID, coded.Meta["parent_id"])

	s.Require().True(errors.As(s.store.AddCollection(equipment.Collection{ID: testutils.CampCollectionID}), &coded))
	s.Equal(errors.CodeAlreadyExists, coded.Code)
	s.Equal(equipment.EntityTypeCollection, coded.Meta["entity_type"])
	s.Equal(testutils.CampCollectionID, coded.Meta["entity_id"])
}

func (s *MemoryTestSuite) TestLocateItem() {
	snap := s.store.Snapshot()

	item, ok := snap.LocateItem(equipment.Item{ID: "b2", EntryID: testutils.EntryBID, CollectionID: testutils.CampCollectionID})
	s.Require().True(ok)
	s.Equal(testutils.PackCollectionID, item.CollectionID, "owning entry wins over the claimed collection")
	s.Equal(5.0, item.Price)

	item, ok = snap.LocateItem(equipment.Item{ID: "b3"})
	s.Require().True(ok)
	s.Equal(testutils.EntryBID, item.EntryID)

	_, ok = snap.LocateItem(equipment.Item{ID: "b2", EntryID: testutils.EntryAID})
	s.False(ok)
}

func (s *MemoryTestSuite) TestSelectVariant() {
	s.True(errors.IsNotFound(s.store.SelectVariant(testutils.PackCollectionID, "var-gone")))
	s.True(errors.IsInvalidArgument(s.store.SelectVariant(testutils.PackCollectionID, testutils.CampVariantID)))

	s.Require().NoError(s.store.SelectVariant(testutils.PackCollectionID, testutils.PackAltVariantID))
	v, ok := s.store.Snapshot().SelectedVariant(testutils.PackCollectionID)
	s.Require().True(ok)
	s.Equal(testutils.PackAltVariantID, v.ID)
}

func (s *MemoryTestSuite) TestLogRecordsEveryAcceptedWrite() {
	s.Require().NoError(s.store.SetSetName("Renamed"))
	s.clock.Advance(time.Second)
	s.Require().NoError(s.store.SetSetName("Renamed"))
	s.Error(s.store.MoveCollection("col-unknown", 0))

	log := s.store.Log()
	s.Require().Len(log, 2)
	s.Equal("set_set_name", log[1].Kind)
	s.Equal(uint64(2), log[1].Revision)
	s.Equal("evt_2", log[1].ID)
}

func (s *MemoryTestSuite) TestNewMemory_Empty() {
	m, err := store.NewMemory(nil)
	s.Require().NoError(err)
	s.Equal(uint64(0), m.Revision())
	s.Empty(m.GetCollectionOrder())
	s.Empty(m.Log())
}
