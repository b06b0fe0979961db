// Package server implements the HTTP wizard service
//
// This package exposes class setup and NCCD report wizards over REST,
// keeps running flows in a bounded registry, and streams wizard events to
// WebSocket subscribers
package server
