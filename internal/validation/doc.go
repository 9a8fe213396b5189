// Package validation checks run inputs before any table is read: input files
// must exist and carry an accepted extension, outputs must be writable in a
// supported format, and request structs are validated with struct tags.
package validation
