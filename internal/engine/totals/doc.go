// Package totals implements the pure side of totals recalculation: running
// price/weight accumulation over a variant's links, limit resolution, the
// collection and set roll-ups, and a version-keyed memo cache.
//
// Nothing here touches the entity store. Every function is total over
// well-formed input: dangling entry or item ids contribute zero instead of
// failing.
package totals
