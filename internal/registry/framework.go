package registry

// Framework is the version of the running framework core, checked against
// adapter compat ranges by lint tooling. Bump on releases that change the
// registry or capability contracts.
var Framework = Version{Major: 1, Minor: 4, Patch: 0}
