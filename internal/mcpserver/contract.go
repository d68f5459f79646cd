package mcpserver

// NamingContract describes the file naming convention that LLM consumers
// should follow when proposing or interpreting file names.
const NamingContract = `# File Naming Contract

Every managed file name encodes a record: a stem, optional tags, an optional
date, an optional version and an optional suffix.

## Grammar

` + "```" + `
STEM[-TAG1-...-TAGn][.YYYYMMDD][.VERSION][.SUFFIX]
` + "```" + `

- Segments are separated by ` + "`" + `.` + "`" + `; the stem and tags share the first segment, separated by ` + "`" + `-` + "`" + `.
- Tags are a set. They are written in lexicographic order and duplicates collapse.
- ` + "`" + `-` + "`" + `, ` + "`" + `.` + "`" + `, ` + "`" + `/` + "`" + ` and whitespace inside a stem or tag become ` + "`" + `_` + "`" + ` when encoding.
- The date is exactly eight digits (` + "`" + `YYYYMMDD` + "`" + `) and must be a real calendar date.
- The version is dotted numbers with an optional qualifier: ` + "`" + `a` + "`" + `, ` + "`" + `b` + "`" + `, ` + "`" + `rc` + "`" + ` (written
  attached, ` + "`" + `1.0rc1` + "`" + `) or ` + "`" + `post` + "`" + `, ` + "`" + `dev` + "`" + ` (written dotted, ` + "`" + `1.2.0.post1` + "`" + `).
  A leading ` + "`" + `v` + "`" + ` is accepted and dropped. A version may not start with an eight-digit number.
- The suffix is the last segment. It may not look like a date or a version token.
  Recognized compound suffixes: ` + "`" + `tar.gz` + "`" + `, ` + "`" + `tar.bz2` + "`" + `, ` + "`" + `tar.xz` + "`" + `, ` + "`" + `tar.zst` + "`" + `, ` + "`" + `tar.lz4` + "`" + `.

## Decoding

A segment that is eight digits is the date, checked before any version
segment. Version-shaped segments after it form the version. A segment that is
neither, other than the suffix, makes the name unparseable. Decoding never
guesses: an impossible date or a malformed version is reported, not reinterpreted.

## Examples

| Name | Stem | Tags | Date | Version | Suffix |
|---|---|---|---|---|---|
| ` + "`" + `foo-bar-baz.20200101.1.0.0.txt` + "`" + ` | foo | bar, baz | 2020-01-01 | 1.0.0 | txt |
| ` + "`" + `backup-db.20230506.tar.gz` + "`" + ` | backup | db | 2023-05-06 | | tar.gz |
| ` + "`" + `glue_cola.txt` + "`" + ` | glue_cola | | | | txt |
| ` + "`" + `app.2.0rc1` + "`" + ` | app | | | 2.0rc1 | |

Use the ` + "`" + `encode_name` + "`" + ` tool to build names instead of writing them by hand.
`
