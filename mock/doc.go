/*
Package mock provides mock implementations of interfaces for testing
purposes.

The SecretManagerClient can be used for running tests without relying on
infrastructure in Google Cloud to be set up.
*/
package mock
