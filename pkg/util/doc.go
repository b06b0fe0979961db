// Package util provides small generic helpers shared by the client packages
package util
