// Package registry stores the device and user records doorctl operates on.
//
// The registry is a single hand-editable JSON file holding panel addresses,
// their Digest credentials and door index, and the users allowed to control
// them (with a "*" wildcard grant). Reads and writes are synchronous;
// writes go through a temp-file rename so a crash never leaves a corrupt
// file behind.
package registry
