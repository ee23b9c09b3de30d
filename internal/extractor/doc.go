// Package extractor turns raw per-host command output into normalized record
// sets.
//
// Extractors are pure: Transform reads only its argument and the extractor's
// own immutable settings, so one extractor may be used for many hosts
// concurrently. Missing or malformed fields never abort a transform; the
// documented default is applied, or the malformed substructure is skipped, and
// the recovery is logged at debug level.
//
// Extractors are selected by key through New: "ospf_neighbor" parses SR Linux
// OSPF neighbor tables, "ping" parses ping statistics per destination.
package extractor
