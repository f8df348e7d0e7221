// Package access grants scoped read access to user-picked source files.
//
// A Token holds a shared advisory lock on the file for the lifetime of an
// export so a concurrent writer cannot truncate it mid-read. Release is safe
// to call any number of times; only the first call unlocks.
package access
