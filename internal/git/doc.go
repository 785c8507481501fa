// Package git clones the toolchain repository in-process with go-git.
//
// It is the alternative to shelling out to the git binary and is selected with
// toolchain.clone_backend: go-git. Failures are mapped onto typed errors
// (AuthError, NotFoundError, ...) so callers can classify them without
// parsing strings.
package git
