package mailer

// Service delivers challenge plaintexts out-of-band. Implementations receive
// the plaintext exactly once and must not retain it.
type Service interface {
	SendVerificationEmail(toEmail, toName, verifyURL, token string) error
	SendPasswordResetEmail(toEmail, toName, resetURL, token string) error
}
