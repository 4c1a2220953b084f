package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrNotFound is returned when a queried entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrSlugAlreadyExists is returned when creating a provider whose slug
	// collides with a registered one.
	ErrSlugAlreadyExists = errors.New("provider slug already exists")

	// ErrModelAlreadyExists is returned when a (provider_id, model_name)
	// pair collides with a registered model.
	ErrModelAlreadyExists = errors.New("model already exists for provider")

	// ErrVaultTokenNotFound is returned when a vault token id does not
	// exist, has expired, or was purged. Deliberately indistinguishable
	// from "never existed" so token ids leak nothing.
	ErrVaultTokenNotFound = errors.New("vault token not found")
)
