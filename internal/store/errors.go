package store

import (
	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
)

func withEntity(err *errors.Error, e core.Entity) *errors.Error {
	return err.WithMeta("entity_type", e.GetType()).WithMeta("entity_id", e.GetID())
}

func notFound(e core.Entity) *errors.Error {
	return withEntity(errors.NotFoundf("%s %s not found", equipment.Kind(e), e.GetID()), e)
}

// notFoundIn reports e missing from its parent
func notFoundIn(e, parent core.Entity) *errors.Error {
	err := errors.NotFoundf("%s %s not found in %s %s",
		equipment.Kind(e), e.GetID(), equipment.Kind(parent), parent.GetID())
	return withEntity(err, e).WithMeta("parent_id", parent.GetID())
}

func alreadyExists(e core.Entity) *errors.Error {
	return withEntity(errors.AlreadyExistsf("%s %s already exists", equipment.Kind(e), e.GetID()), e)
}
