// Package api defines the data types shared by the LearnABLE client packages
//
// This package contains the error taxonomy returned by the HTTP gateway, the
// normalized response envelope, backend entities, and the request and
// response messages of the wizard service
package api
