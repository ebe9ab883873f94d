// Package snapshot reads the shared feed file into memory behind a TTL cache.
//
// The generator appends without locks, so a read can land in the middle of an
// append. Bytes after the last newline are treated as an in-flight row and
// left for a later refresh; every complete row must decode or the load fails.
//
// Two sources are available. [FileSource] re-parses the whole file on every
// load. [TailSource] keeps a byte offset and only parses what was appended
// since the previous load, starting over if the file shrinks.
package snapshot
