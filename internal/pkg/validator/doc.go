// Package validator validates request structs and holds the account
// password policy.
//
// Business code depends on the Validator interface; V10Validator implements
// it on go-playground/validator v10 with English messages.
package validator
