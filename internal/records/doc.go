// Package records reads and writes the catalog's flat-file records.
//
// Two files back a catalog:
//
//	books.txt   id,title,True|False
//	user.txt    id,name[,borrowed_id]*
//
// Records are comma delimited, one per line. A field holding a comma or a
// quote is written with RFC 4180 quoting, so it survives a round trip. Every
// other field is written bare and byte for byte, leading spaces included.
//
// On read, quoting is honoured only when the whole line is valid RFC 4180.
// Any other line is split on every comma and its quotes are kept as text, so
// a legacy title such as "Hello" World loads unchanged. A legacy field that
// is quoted from end to end, such as "Dune", reads back as Dune.
//
// A malformed line is fatal: loaders return a *RecordError naming the file and
// line, and nothing is loaded. Saving replaces the whole file and gives no
// atomicity guarantee.
package records
