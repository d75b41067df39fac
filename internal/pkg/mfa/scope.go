package mfa

// Purpose identifies what a sealed value is used for.
type Purpose string

// PurposeOTPSeed scopes encryption to TOTP secrets.
const PurposeOTPSeed Purpose = "otp_seed"

// Scope binds a sealed value to its owner and purpose. It is authenticated
// as GCM additional data, so a value copied to another owner fails to open.
type Scope struct {
	// Subject is the owning identity id.
	Subject string
	// Purpose is the encryption purpose.
	Purpose Purpose
}

// OTPSeed returns the scope of the TOTP secret owned by subject.
func OTPSeed(subject string) Scope {
	return Scope{Subject: subject, Purpose: PurposeOTPSeed}
}
