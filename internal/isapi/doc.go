// Package isapi implements the HTTP/XML device protocol spoken by
// network-attached access-control panels, and the controller that drives a
// door-state change over it.
//
// A state change is two sequential device operations: a PUT to the door
// parameter endpoint configuring the relay/magnetic lock policy, then a PUT
// to the remote-control endpoint carrying the control verb. Closing a door
// is the exception: it is achieved entirely by the configuration step and
// the control step is skipped.
//
// Requests are authenticated with HTTP Digest (see package digest). The
// transport sends each request unauthenticated first and re-sends exactly
// once after a 401 challenge; ordering of the two steps is a correctness
// requirement since a panel that is mid-configuration may reject an
// out-of-order control command.
package isapi
