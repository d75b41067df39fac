// Package otp generates and validates time-based one-time passwords and
// renders provisioning URIs as QR images for authenticator apps.
package otp
