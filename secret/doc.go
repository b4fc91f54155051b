/*
Package secret provides implementations of the affogato interfaces backed by
Google Cloud Secret Manager.

BasicProjectVault and BasicSecretVault provide abstractions to interact with
secrets scoped to a project without needing to build resource names or make
direct calls to the API to perform frequently-used operations.

BasicSecretManagerClient provides a convenience wrapper around the Secret
Manager API. If the vault implementations do not fulfill your needs, you can
make calls directly to the Secret Manager API instead.
*/
package secret
