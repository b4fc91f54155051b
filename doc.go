/*
Package affogato provides interfaces to interact with secrets stored in Google
Cloud Secret Manager, scoped to a single project.

The ProjectVault interface provides an abstraction to list secrets and secret
versions under a project and to construct secret-level handles without needing
to build resource names or make direct calls to the API.

The SecretVault interface provides an abstraction to create, fetch, delete,
version, and access a single secret's payloads.

The SecretManagerClient interface provides a convenience wrapper around the
Secret Manager API. If the vault interfaces do not fulfill your needs, you can
make API calls directly to Secret Manager instead.
*/
package affogato
