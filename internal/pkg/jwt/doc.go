// Package jwt issues and verifies the service's signed tokens.
//
// A Symmetric signer handles one HS512 key. Tokens pairs two signers with
// distinct keys: short-lived access tokens and day-long refresh tokens that
// carry the same identity claims. Verified claims travel through the request
// context with SetAuth and GetAuth.
package jwt
