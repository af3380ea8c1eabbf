package store

import "bytes"

// Key layout. Triples live in a row table keyed by ID plus two index
// tables for bidirectional traversal, mirroring the SPO/OPS dual-index
// scheme:
//
//	t:<id>                          -> JSON triple row
//	s:<subject>\x00<pred>\x00<object>\x00<id> -> nil  (forward index)
//	o:<object>\x00<pred>\x00<subject>\x00<id> -> nil  (reverse index)
//	v:<gerund>                      -> JSON verb definition
//	r:<name>                        -> JSON role definition
//
// Identifiers must not contain NUL bytes; AddTriple rejects them. Index
// entries for soft-deleted triples are removed at delete time, so every
// index scan automatically excludes them.
const (
	rowPrefix  = "t:"
	spoPrefix  = "s:"
	opsPrefix  = "o:"
	verbPrefix = "v:"
	rolePrefix = "r:"

	sep = "\x00"
)

func rowKey(id string) []byte {
	return []byte(rowPrefix + id)
}

func spoKey(subject, predicate, object, id string) []byte {
	return []byte(spoPrefix + subject + sep + predicate + sep + object + sep + id)
}

func opsKey(subject, predicate, object, id string) []byte {
	return []byte(opsPrefix + object + sep + predicate + sep + subject + sep + id)
}

func verbKey(gerund string) []byte {
	return []byte(verbPrefix + gerund)
}

func roleKey(name string) []byte {
	return []byte(rolePrefix + name)
}

// decodeIndexKey splits an index key back into its four fields. The first
// field is the subject for SPO keys and the object for OPS keys.
func decodeIndexKey(key []byte) (first, predicate, third, id string, ok bool) {
	if len(key) < 2 {
		return "", "", "", "", false
	}
	parts := bytes.SplitN(key[2:], []byte(sep), 4)
	if len(parts) != 4 {
		return "", "", "", "", false
	}
	return string(parts[0]), string(parts[1]), string(parts[2]), string(parts[3]), true
}
