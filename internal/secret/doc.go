// Package secret seals and opens credentials kept in environment files.
//
// A sealed value looks like "sealed:<base64>" and carries its own random salt and nonce.
// The key is derived from a passphrase with PBKDF2-SHA256 and the payload is AES-256-GCM.
// Values without the prefix are returned unchanged so plain credentials keep working.
package secret
