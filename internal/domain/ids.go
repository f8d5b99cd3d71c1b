package domain

// SubjectID is the authenticated subject extracted from credential claims ("sub").
// The remote API uses the account email; we model it as an opaque identifier.
type SubjectID string

// StorageKey names the single slot a credential store persists the bearer token under.
type StorageKey string

// DefaultStorageKey matches the key the browser client historically used.
const DefaultStorageKey StorageKey = "token"
