package rowguard

// Version is the published SDK version.
// 0.3.0: Breaking - MintToken takes variadic Options instead of a positional
// role/validity pair; an explicit non-positive validity is now rejected.
// 0.2.0: Add RefreshGuard staleness threshold option and guarded accessors for
// the storage, functions, auth, and realtime planes.
const Version = "0.3.0"
