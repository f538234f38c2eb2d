package testutils

import (
	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/store"
)

// Fixture ids shared by package tests
const (
	TestSetID = "set-test-001"

	PackCollectionID = "col-pack"
	PackVariantID    = "var-pack-main"
	PackAltVariantID = "var-pack-alt"
	EntryAID         = "entry-a"
	EntryBID         = "entry-b"

	CampCollectionID = "col-camp"
	CampVariantID    = "var-camp-light"
	EntryCID         = "entry-c"
)

// TestLimitDefinitions are the weight and price limits used by fixtures
func TestLimitDefinitions() []equipment.LimitDefinition {
	return []equipment.LimitDefinition{
		{Name: "weight", Dimension: equipment.DimensionWeight},
		{Name: "price", Dimension: equipment.DimensionPrice},
	}
}

// CreateTestDocument builds a two-collection set.
//
// The pack collection selects A1 (10/2) and B2 (5/1); B3 (8/3) is the
// alternative for entry B. The camp collection selects C1 (3/6).
func CreateTestDocument() *store.Document {
	return &store.Document{
		Set: equipment.EquipmentSet{
			ID:              TestSetID,
			Name:            "Dungeon delve",
			CollectionOrder: []string{PackCollectionID, CampCollectionID},
			Limits:          equipment.Limits{"weight": 10},
		},
		LimitDefinitions: TestLimitDefinitions(),
		Collections: []store.CollectionDocument{
			{
				ID:   PackCollectionID,
				Name: "Backpack",
				Entries: []equipment.Entry{
					{
						ID:   EntryAID,
						Name: "Weapon",
						Items: []equipment.Item{
							{ID: "a1", Name: "Shortsword", Price: 10, Weight: 2},
							{ID: "a2", Name: "Mace", Price: 12, Weight: 4},
						},
					},
					{
						ID:   EntryBID,
						Name: "Light",
						Items: []equipment.Item{
							{ID: "b2", Name: "Torch", Price: 5, Weight: 1},
							{ID: "b3", Name: "Lantern", Price: 8, Weight: 3},
						},
					},
				},
				Variants: []equipment.Variant{
					{
						ID:   PackVariantID,
						Name: "Main",
						EntityLinks: []equipment.EntityLink{
							{EntryID: EntryAID, SelectedItemID: "a1"},
							{EntryID: EntryBID, SelectedItemID: "b2"},
						},
					},
					{
						ID:   PackAltVariantID,
						Name: "Heavy",
						EntityLinks: []equipment.EntityLink{
							{EntryID: EntryAID, SelectedItemID: "a2"},
						},
					},
				},
				SelectedVariantID: PackVariantID,
			},
			{
				ID:   CampCollectionID,
				Name: "Camp",
				Entries: []equipment.Entry{
					{
						ID:   EntryCID,
						Name: "Shelter",
						Items: []equipment.Item{
							{ID: "c1", Name: "Tent", Price: 3, Weight: 6},
						},
					},
				},
				Variants: []equipment.Variant{
					{
						ID:          CampVariantID,
						Name:        "Light",
						EntityLinks: []equipment.EntityLink{{EntryID: EntryCID, SelectedItemID: "c1"}},
					},
				},
			},
		},
	}
}
