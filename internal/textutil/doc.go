// Package textutil cleans user-supplied names before they become file names.
package textutil
