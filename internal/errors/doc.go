// Package errors provides coded errors for the equip-api project.
//
// Every layer returns *Error values so callers can branch on a Code instead
// of matching strings:
//
//	err := errors.NotFoundf("variant %s not found", variantID).
//	    WithMeta("collection_id", collectionID)
//
//	if errors.IsNotFound(err) {
//	    // treat as a no-op
//	}
//
// Wrap keeps the code of the wrapped error and adds context:
//
//	if err := st.MoveEntry(collectionID, entryID, moveTo); err != nil {
//	    return errors.Wrap(err, "failed to apply entry move")
//	}
//
// Layer guidelines:
//   - Pure totals functions never return errors; dangling ids degrade to
//     zero contributions.
//   - The store returns InvalidArgument for malformed commands and NotFound
//     for commands that must target an existing entity.
//   - Orchestrators wrap store errors with the event being processed.
//   - Handlers convert with ToGRPCError at the edge.
//
// Config and input structs collect field problems with a ValidationBuilder:
//
//	vb := errors.NewValidationBuilder()
//	if cfg.Store == nil {
//	    vb.RequiredField("Store")
//	}
//	return vb.Build()
package errors
