// Package workspace implements the filesystem primitives the pipeline gates on:
// presence checks, wipe-and-recreate of build directories and tree copies that
// preserve permissions and modification times.
package workspace
