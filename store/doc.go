// Package store persists containers by key.
//
// Three backends share the Store interface:
//
//	Badger  embedded badger database, on disk or in memory
//	Redis   a Redis server, keys namespaced by a prefix
//	Linear  a WebAssembly linear memory arena hosted by wazero
//
// Every Put validates the container's framing. Badger and Redis values can
// be snappy-compressed with WithCompression.
package store
