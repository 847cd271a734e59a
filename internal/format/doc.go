// Package format implements the byte-level encoding of EAPK/EWPK packages.
//
// A package is laid out as a header, an entry table and a data region:
//
//	[magic 4]
//	[name][id][version]            fixed 256-byte fields, or u32-length-prefixed
//	[entry_count u32][reserved u32]
//	[table_offset u32]             variable profile only
//	entry_count x [name_len u32][name][is_dir u32][offset u32][size u32]
//	[file bytes ...]               concatenated in table order
//
// All integers are little-endian and no field is padded for alignment.
package format
