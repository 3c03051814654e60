// Package uverse is an entity-component-store runtime. Client code attaches
// typed component data to lightweight entity handles, looks it up through
// pluggable per-component storages, and iterates matching subsets through
// refreshable caches.
//
// A Universe owns entity allocation and one storage per registered component
// type. Entity slots are recycled with a generation counter, so handles to a
// freed entity go stale instead of aliasing the slot's next occupant. Every
// storage mutation advances the universe's invalidation clock, which lets a
// Cache detect that its borrowed pointers may dangle and recompute its join
// instead of rescanning every frame.
//
// Universes come from a Registry pool and are reset rather than destroyed.
// All operations on a single universe are single-threaded by contract.
package uverse
