// Package cache stores raw commit logs and rendered images between runs.
//
// Three backends implement [Cache]:
//
//   - [FileCache] keeps JSON entries under the user cache directory
//   - [RedisCache] shares entries through a Redis server
//   - [NullCache] stores nothing and disables caching
//
// Keys come from a [Keyer]. Logs are keyed by the source fingerprint (see
// package source), so a new commit or ref invalidates them. Images are
// keyed by a hash of the DOT text and the output format.
package cache
