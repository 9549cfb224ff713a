package domain

import (
	"regexp"
	"strings"
	"time"
)

// Valid account roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var validRoles = map[string]bool{
	RoleUser:  true,
	RoleAdmin: true,
}

func IsValidRole(role string) bool {
	return validRoles[role]
}

const MinPasswordLength = 6

// Challenge is a pending, single-use verification secret stored as its
// one-way hash plus an expiry. One per kind per account; setting a new one
// replaces the previous.
type Challenge struct {
	Hash      *string
	ExpiresAt *time.Time
}

func (c Challenge) Pending() bool {
	return c.Hash != nil && c.ExpiresAt != nil
}

func (c Challenge) ExpiredAt(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

type Address struct {
	Label    string `json:"label,omitempty"`
	Line1    string `json:"line1"`
	Locality string `json:"locality,omitempty"`
	City     string `json:"city"`
	State    string `json:"state,omitempty"`
	Pincode  string `json:"pincode"`
}

type NotificationPrefs struct {
	Email        bool  `json:"email"`
	SMS          bool  `json:"sms"`
	ReminderDays []int `json:"reminder_days"`
}

func DefaultNotificationPrefs() NotificationPrefs {
	return NotificationPrefs{Email: true, SMS: false, ReminderDays: []int{7, 3}}
}

type Account struct {
	ID              int64
	Role            string
	Name            string
	Email           string
	Phone           string // optional, unique when present
	PasswordHash    string
	IsEmailVerified bool
	IsPhoneVerified bool

	EmailVerification Challenge
	PhoneOTP          Challenge
	PasswordReset     Challenge

	Addresses         []Address
	NotificationPrefs NotificationPrefs

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountInfo is the public view of an account. It carries no secret or
// challenge fields by construction, so it is always safe to serialize.
type AccountInfo struct {
	ID                int64             `json:"id"`
	Role              string            `json:"role"`
	Name              string            `json:"name"`
	Email             string            `json:"email"`
	Phone             string            `json:"phone,omitempty"`
	IsEmailVerified   bool              `json:"is_email_verified"`
	IsPhoneVerified   bool              `json:"is_phone_verified"`
	Addresses         []Address         `json:"addresses"`
	NotificationPrefs NotificationPrefs `json:"notification_prefs"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func (a *Account) ToInfo() *AccountInfo {
	addresses := a.Addresses
	if addresses == nil {
		addresses = []Address{}
	}
	return &AccountInfo{
		ID:                a.ID,
		Role:              a.Role,
		Name:              a.Name,
		Email:             a.Email,
		Phone:             a.Phone,
		IsEmailVerified:   a.IsEmailVerified,
		IsPhoneVerified:   a.IsPhoneVerified,
		Addresses:         addresses,
		NotificationPrefs: a.NotificationPrefs,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// ---------- Requests ----------

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type VerifyPhoneRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// UpdateAccountRequest is a partial update: every field is a pointer so an
// absent field stays a SQL NULL all the way down to the COALESCE in the
// repository. Addresses must be a pointer too; a nil slice would encode as
// JSON null into the jsonb column and wipe the stored value.
type UpdateAccountRequest struct {
	Name      *string            `json:"name,omitempty"`
	Email     *string            `json:"email,omitempty"`
	Phone     *string            `json:"phone,omitempty"`
	Addresses *[]Address         `json:"addresses,omitempty"`
	Prefs     *NotificationPrefs `json:"notification_prefs,omitempty"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// ---------- Validation ----------

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex   = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodeRegex = regexp.MustCompile(`^\d{6}$`)
)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

func validateAddress(a Address) error {
	if strings.TrimSpace(a.Line1) == "" {
		return NewValidationError("addresses.line1", "is required")
	}
	if strings.TrimSpace(a.City) == "" {
		return NewValidationError("addresses.city", "is required")
	}
	if !pincodeRegex.MatchString(a.Pincode) {
		return NewValidationError("addresses.pincode", "must be a 6-digit code")
	}
	return nil
}

func validatePassword(field, password string) error {
	if password == "" {
		return NewValidationError(field, "is required")
	}
	if len(password) < MinPasswordLength {
		return NewValidationError(field, "must be at least 6 characters")
	}
	return nil
}

func (r *SignUpRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *SignUpRequest) Validate() error {
	if len(r.Name) < 2 || len(r.Name) > 50 {
		return NewValidationError("name", "must be between 2 and 50 characters")
	}
	if r.Email == "" {
		return NewValidationError("email", "is required")
	}
	if !IsValidEmail(r.Email) {
		return NewValidationError("email", "is not a valid email address")
	}
	if r.Phone != "" && !IsValidPhone(r.Phone) {
		return NewValidationError("phone", "is not a valid phone number")
	}
	return validatePassword("password", r.Password)
}

func (r *SignInRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *SignInRequest) Validate() error {
	if r.Email == "" && r.Phone == "" {
		return NewValidationError("email", "email or phone is required")
	}
	if r.Email != "" && !IsValidEmail(r.Email) {
		return NewValidationError("email", "is not a valid email address")
	}
	if r.Email == "" && !IsValidPhone(r.Phone) {
		return NewValidationError("phone", "is not a valid phone number")
	}
	if r.Password == "" {
		return NewValidationError("password", "is required")
	}
	return nil
}

func (r *VerifyPhoneRequest) Normalize() {
	r.Phone = strings.TrimSpace(r.Phone)
	r.OTP = strings.TrimSpace(r.OTP)
}

func (r *VerifyPhoneRequest) Validate() error {
	if !IsValidPhone(r.Phone) {
		return NewValidationError("phone", "is not a valid phone number")
	}
	if len(r.OTP) != 6 {
		return NewValidationError("otp", "must be a 6-digit code")
	}
	return nil
}

func (r *ChangePasswordRequest) Validate() error {
	if r.OldPassword == "" {
		return NewValidationError("old_password", "is required")
	}
	return validatePassword("new_password", r.NewPassword)
}

func (r *ForgotPasswordRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *ForgotPasswordRequest) Validate() error {
	if r.Email == "" && r.Phone == "" {
		return NewValidationError("email", "email or phone is required")
	}
	if r.Email != "" && !IsValidEmail(r.Email) {
		return NewValidationError("email", "is not a valid email address")
	}
	if r.Email == "" && !IsValidPhone(r.Phone) {
		return NewValidationError("phone", "is not a valid phone number")
	}
	return nil
}

func (r *ResetPasswordRequest) Validate() error {
	return validatePassword("new_password", r.NewPassword)
}

func (r *UpdateAccountRequest) Normalize() {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		*r.Email = strings.ToLower(strings.TrimSpace(*r.Email))
	}
	if r.Phone != nil {
		*r.Phone = strings.TrimSpace(*r.Phone)
	}
}

func (r *UpdateAccountRequest) Validate() error {
	if r.Name != nil && (len(*r.Name) < 2 || len(*r.Name) > 50) {
		return NewValidationError("name", "must be between 2 and 50 characters")
	}
	if r.Email != nil && !IsValidEmail(*r.Email) {
		return NewValidationError("email", "is not a valid email address")
	}
	if r.Phone != nil && *r.Phone != "" && !IsValidPhone(*r.Phone) {
		return NewValidationError("phone", "is not a valid phone number")
	}
	if r.Addresses != nil {
		for _, addr := range *r.Addresses {
			if err := validateAddress(addr); err != nil {
				return err
			}
		}
	}
	if r.Prefs != nil {
		for _, d := range r.Prefs.ReminderDays {
			if d < 0 || d > 60 {
				return NewValidationError("notification_prefs.reminder_days", "must be between 0 and 60")
			}
		}
	}
	return nil
}

func (r *UpdateRoleRequest) Validate() error {
	if !IsValidRole(r.Role) {
		return NewValidationError("role", "must be user or admin")
	}
	return nil
}
