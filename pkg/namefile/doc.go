// Package namefile encodes a small structured record into a canonical,
// human-readable file name and decodes such names back into records.
//
// A canonical name has the shape
//
//	STEM[-TAG1-TAG2-...][.YYYYMMDD][.VERSION][.SUFFIX]
//
// for example
//
//	report-draft-q3.20240115.1.2.0.post1.pdf
//
// decodes to stem "report", tags {draft, q3}, date 2024-01-15, version
// 1.2.0.post1 and suffix "pdf".
//
// The first segment is the only one that may contain '-'; every '-' after
// the stem starts a tag. A segment of exactly eight digits in date position
// is always a date. A run of version-shaped segments is a single version,
// and the trailing segment is the suffix unless it is itself date- or
// version-shaped. Suffixes therefore never look like versions, which keeps
// Encode injective.
//
// Encode and Decode are pure functions and safe for concurrent use.
package namefile
