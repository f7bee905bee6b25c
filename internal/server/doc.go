// Package server exposes the doorctl JSON API and WebSocket event feed.
package server
