// Package credential reads the claims carried inside a bearer credential.
//
// Decode does NOT verify signatures, issuer, audience or expiry. The portal
// uses the decoded role only to choose which screens to show and where to
// redirect. Every data request is re-authorized by the remote API, which is the
// sole authority over what a credential may access. Nothing in this package may
// be used to make a security decision.
package credential
