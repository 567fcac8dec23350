// Package apitests contains the contract scenarios for the posts and users API and their
// supporting API.
//
// Infrastructure that is not specific to posts or users, such as the request and response
// contracts, failure classification and result collection, is in the lower-level framework
// package.
package apitests
