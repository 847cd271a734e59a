// Package eospkg builds and reads EOS application and watchface packages.
//
// A package is a single flat file: a header, an entry table, and the
// concatenated contents of every file in table order.
//
//	[magic "EAPK" | "EWPK"]
//	[name][id][version]          fixed 256-byte fields or u32-prefixed strings
//	[entry_count u32][reserved u32]
//	[table_offset u32]           variable profile only
//	[name_len u32][name][is_dir u32][offset u32][size u32] × entry_count
//	[file data]
//
// All integers are little-endian. File offsets are absolute. Directories
// carry offset 0 and size 0.
//
// # Building
//
// Build a package from a directory that holds a manifest.json:
//
//	res, err := eospkg.Build(ctx, "./clock", "clock.eapk")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Digest)
//
// Metadata given with [BuildWithMetadata] overrides the manifest field by
// field. Choose the watchface magic with [BuildWithKind] and the header
// revision with [BuildWithProfile].
//
// # Reading
//
// Open a package and read it as an [io/fs.FS]:
//
//	pkg, err := eospkg.OpenFile("clock.eapk", eospkg.OpenWithKind(eospkg.KindApplication))
//	if err != nil {
//	    return err
//	}
//	defer pkg.Close()
//	data, err := pkg.ReadFile("manifest.json")
//
// Or extract it:
//
//	_, err = pkg.Extract(ctx, "./out")
//
// # Errors
//
// Failures carry one of [ErrConfig], [ErrEmpty], [ErrIO] or
// [ErrInvalidArchive] and can be told apart with [errors.Is].
package eospkg
