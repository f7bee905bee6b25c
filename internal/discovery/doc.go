// Package discovery finds access-control panels on the local network
// via mDNS.
package discovery
