// Package jsoner extends a JSON-style codec so values of user types survive a
// round trip as live objects instead of plain maps.
//
// Components:
//   - types.Table: names types and records which registered type extends which.
//   - registry.Subclass: values keyed by type, found for the type or any ancestor.
//   - Serializer: walks values, wraps covered objects in envelopes, rebuilds them on load.
//   - codec.Codec[any]: writes the value tree (JSON by default; go-json, CBOR,
//     msgpack and protobuf Struct are available).
//
// Envelopes:
//
//	{"__cls__": "pkg.Type"}                                  - a type used as a value
//	{"__obj_cls__": "pkg.Type", "__json_data__": <payload>}  - an object
//
// An object is covered when its type implements DictConvertible and
// DictConstructible, StringConvertible and StringConstructible, or when both
// registries hold an entry for its type or an ancestor:
//
//	s := jsoner.MustNew(jsoner.Options{})
//	jsoner.RegisterFuncs(s, "geo.Point", encodePoint, decodePoint)
//	b, _ := s.Dumps(map[string]any{"at": Point{1, 2}})
//	v, _ := s.Loads(b) // map[string]any{"at": Point{1, 2}}
//
// Envelopes that cannot be honoured on load (unknown type, no way to
// construct it) come back as maps and are reported through Hooks.
package jsoner
