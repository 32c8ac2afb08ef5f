// Package api exposes the users, tweets and auth services over HTTP with a
// chi router.
package api
