// Package session is the client-side session core for the HCAS admin
// console. It owns how a bearer credential is obtained, stored, refreshed
// and invalidated, and how that credential gates access to console routes.
//
// The pieces, in dependency order:
//
//   - CredentialStore (store/): durable key/value storage for the token pair
//     and the cached profile.
//   - Transport: an http.RoundTripper attaching the access token to outbound
//     requests and recovering from a single 401 with a coalesced
//     refresh-and-retry.
//   - Client: the typed surface over the REST API.
//   - Manager: login, registration, logout and profile refresh, exposing a
//     Snapshot of the session state.
//   - middleware/guard: role-gated route middleware consuming the Manager.
package session
