// Package variant defines the shared types of a packed variant container: a
// single binary encoding that holds a value of any registered type, tagged
// with that type's identifier, for value-stores that have no native notion
// of "any type".
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│ "(int4,42)" ─ text.Parse ─ Registry ─ InputFunc ─ container.Encode │
//	│ container.Decode ─ typecache ─ OutputFunc ─ text.Format ─ "(int4,42)" │
//	└──────────────────────────────────────────────────────────────────┘
//
// # Packages
//
//	variant     - TypeID, Datum, Value, TypeInfo, Registry (this package)
//	errors      - structured errors with phase and kind
//	header      - packed header word and overflow byte
//	typecache   - single-slot descriptor cache per (type, direction)
//	container   - binary encoder and decoder
//	text        - (type,value) rendering, quoting, record parsing
//	registry    - builtin type registry
//	codec       - In/Out facade owning one cache per direction
//	store       - badger, redis and linear-memory value stores
//	metrics     - Prometheus counters for caches and codecs
//
// # Binary Layout
//
//	┌──────────────┬───────────────┬─────────┬───────────────┐
//	│ total_length │ packed_header │ payload │ overflow byte │
//	│ u32 LE       │ u32 LE        │ 0..n    │ iff OVERFLOW  │
//	└──────────────┴───────────────┴─────────┴───────────────┘
//
// Header bits, most significant first: OVERFLOW, IS_NULL, VERSION, then 29
// bits of type identifier. Identifiers above 0x1FFFFFFF set OVERFLOW and
// keep their top 8 bits in the trailing byte.
//
// # Thread Safety
//
// Registries are safe for concurrent reads. Caches and codecs mutate in
// place and are NOT thread-safe; use one per goroutine.
package variant
