package store

import (
	"encoding/json"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
)

// Document formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Document is the serialized form of one equipment set. Derived totals are
// carried in JSON only; YAML documents are hand-written fixtures.
type Document struct {
	Set              equipment.EquipmentSet      `json:"set" yaml:"set"`
	LimitDefinitions []equipment.LimitDefinition `json:"limit_definitions" yaml:"limit_definitions"`
	Collections      []CollectionDocument        `json:"collections" yaml:"collections"`
}

// CollectionDocument nests a collection's entries and variants
type CollectionDocument struct {
	ID                string                      `json:"id" yaml:"id"`
	Name              string                      `json:"name" yaml:"name"`
	Limits            equipment.Limits            `json:"limits,omitempty" yaml:"limits,omitempty"`
	Entries           []equipment.Entry           `json:"entries,omitempty" yaml:"entries,omitempty"`
	Variants          []equipment.Variant         `json:"variants,omitempty" yaml:"variants,omitempty"`
	SelectedVariantID string                      `json:"selected_variant_id,omitempty" yaml:"selected_variant_id,omitempty"`
	Totals            *equipment.CollectionTotals `json:"totals,omitempty" yaml:"-"`
}

// DecodeDocument parses a document in the given format
func DecodeDocument(data []byte, format string) (*Document, error) {
	doc := &Document{}

	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, doc)
	case FormatYAML, "yml":
		err = yaml.Unmarshal(data, doc)
	default:
		return nil, errors.InvalidArgumentf("unsupported document format %q", format)
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode document")
	}

	return doc, nil
}

// EncodeDocument renders a document in the given format
func EncodeDocument(doc *Document, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML, "yml":
		return yaml.Marshal(doc)
	default:
		return nil, errors.InvalidArgumentf("unsupported document format %q", format)
	}
}

// Export serializes a snapshot; collections follow the set order
func Export(s *Snapshot) *Document {
	set := *s.set
	set.CollectionOrder = slices.Clone(s.set.CollectionOrder)
	set.Limits = cloneLimits(s.set.Limits)

	doc := &Document{
		Set:              set,
		LimitDefinitions: slices.Clone(s.definitions),
		Collections:      make([]CollectionDocument, 0, len(s.collections)),
	}

	for _, collectionID := range s.set.CollectionOrder {
		c, ok := s.collections[collectionID]
		if !ok {
			continue
		}

		cd := CollectionDocument{
			ID:                c.ID,
			Name:              c.Name,
			Limits:            cloneLimits(c.Limits),
			SelectedVariantID: s.selected[c.ID],
			Totals:            c.Totals,
		}
		for _, e := range s.GetEntriesByCollection(c.ID) {
			entry := *e
			entry.Items = slices.Clone(e.Items)
			cd.Entries = append(cd.Entries, entry)
		}
		for _, id := range c.VariantIDs {
			if v, ok := s.variants[id]; ok {
				variant := *v
				variant.EntityLinks = slices.Clone(v.EntityLinks)
				cd.Variants = append(cd.Variants, variant)
			}
		}

		doc.Collections = append(doc.Collections, cd)
	}

	return doc
}

// load replaces the content of next with the document. Every collection and
// variant is stamped with next's revision.
func (d *Document) load(next *Snapshot) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("set.id", d.Set.ID, vb)
	if err := vb.Build(); err != nil {
		return err
	}
	if err := validateDefinitions(d.LimitDefinitions); err != nil {
		return err
	}

	rev := next.revision
	*next = *newSnapshot()
	next.revision = rev
	next.definitions = slices.Clone(d.LimitDefinitions)

	set := d.Set
	set.CollectionOrder = nil
	next.set = &set

	if err := validateLimits(next, "set.limits", d.Set.Limits); err != nil {
		return err
	}
	set.Limits = normalizeLimits(d.Set.Limits)

	for _, cd := range d.Collections {
		if err := next.loadCollection(cd); err != nil {
			return err
		}
	}

	order, err := resolveOrder(d.Set.CollectionOrder, d.Collections, next)
	if err != nil {
		return err
	}
	set.CollectionOrder = order

	return nil
}

func (s *Snapshot) loadCollection(cd CollectionDocument) error {
	if cd.ID == "" {
		return errors.InvalidArgument("collection id is required")
	}
	if _, exists := s.collections[cd.ID]; exists {
		return alreadyExists(equipment.CollectionRef(cd.ID))
	}
	if err := validateLimits(s, "collections."+cd.ID+".limits", cd.Limits); err != nil {
		return err
	}

	c := &equipment.Collection{
		ID:             cd.ID,
		Name:           cd.Name,
		Limits:         normalizeLimits(cd.Limits),
		Totals:         cd.Totals,
		EntriesVersion: s.revision,
	}

	for _, entry := range cd.Entries {
		if entry.ID == "" {
			return errors.InvalidArgumentf("collection %s: entry id is required", cd.ID)
		}
		if _, exists := s.entries[entry.ID]; exists {
			return alreadyExists(equipment.EntryRef(entry.ID))
		}
		e := entry
		e.CollectionID = cd.ID
		e.Items = slices.Clone(entry.Items)
		if err := normalizeItems(&e); err != nil {
			return err
		}
		s.entries[e.ID] = &e
		c.EntryIDs = append(c.EntryIDs, e.ID)
	}

	for _, variant := range cd.Variants {
		if variant.ID == "" {
			return errors.InvalidArgumentf("collection %s: variant id is required", cd.ID)
		}
		if _, exists := s.variants[variant.ID]; exists {
			return alreadyExists(equipment.VariantRef(variant.ID))
		}
		v := variant
		v.CollectionID = cd.ID
		v.EntityLinks = slices.Clone(variant.EntityLinks)
		v.LinksVersion = s.revision
		s.variants[v.ID] = &v
		c.VariantIDs = append(c.VariantIDs, v.ID)
	}

	switch {
	case cd.SelectedVariantID != "":
		if !slices.Contains(c.VariantIDs, cd.SelectedVariantID) {
			return errors.InvalidArgumentf("collection %s: selected variant %s not found", cd.ID, cd.SelectedVariantID)
		}
		s.selected[cd.ID] = cd.SelectedVariantID
	case len(c.VariantIDs) > 0:
		s.selected[cd.ID] = c.VariantIDs[0]
	}

	s.collections[c.ID] = c
	return nil
}

// resolveOrder validates an explicit collection order. Collections the order
// does not mention follow in document order.
func resolveOrder(explicit []string, collections []CollectionDocument, s *Snapshot) ([]string, error) {
	order := make([]string, 0, len(collections))
	seen := make(map[string]struct{}, len(collections))

	for _, id := range explicit {
		if _, ok := s.collections[id]; !ok {
			return nil, errors.InvalidArgumentf("collection order references unknown collection %s", id)
		}
		if _, dup := seen[id]; dup {
			return nil, errors.InvalidArgumentf("collection order lists %s twice", id)
		}
		seen[id] = struct{}{}
		order = append(order, id)
	}

	for _, cd := range collections {
		if _, ok := seen[cd.ID]; !ok {
			seen[cd.ID] = struct{}{}
			order = append(order, cd.ID)
		}
	}

	return order, nil
}
