// Package whoop implements the WHOOP developer API client used by the CLI.
//
// # Authenticated requests
//
// [Client.get] wraps every data request with bearer-token injection and a
// single refresh-and-retry pass: a 401 triggers exactly one token refresh and
// one retry with the new token, never more. A second 401 after refresh is a
// hard failure. Refresh failures are fatal for the calling operation; the
// operator has to re-run the authorization flow.
//
// # Pagination
//
// [Client.FetchAll] drives a page fetcher across the cursor-based collection
// endpoints, threading token rotations forward so a refresh on page three
// carries into page four. Repeated cursors break the loop; an untrusted API
// must not be able to paginate forever.
//
// # Date handling
//
// The API's server-side range filter includes records that merely intersect
// the requested window, so [FilterByStart] re-filters results client-side.
// [FilterOpenBefore] additionally drops still-open records that began before
// the window, which matters for daily compliance checks.
//
// # Error Handling
//
// Structured errors [HTTPError] and [RefreshError] carry the upstream status
// and body and match the shared sentinels via [errors.Is]:
//   - [shared.ErrAPIRequest] : non-2xx data response
//   - [shared.ErrRefreshFailed] : token endpoint rejected the refresh grant
//   - [shared.ErrNoRefreshToken] : 401 with no refresh token on file
package whoop
