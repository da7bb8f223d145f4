// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired      = "auth.required"
	KeyAuthInvalidToken  = "auth.invalid_token"
	KeyAuthTokenExpired  = "auth.token_expired"
	KeyAdminAccessDenied = "admin.access_denied"

	// Validation
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationRequired = "validation.required"

	// Rate limit
	KeyRateLimitExceeded = "rate_limit.exceeded"

	// Command failures, formatted with the action label
	KeyFailureWithReason   = "failure.with_reason"
	KeyFailureInvalidInput = "failure.invalid_input"
	KeyFailureUnauthorized = "failure.unauthorized"
	KeyFailureForbidden    = "failure.forbidden"
	KeyFailureNotFound     = "failure.not_found"
	KeyFailureConflict     = "failure.conflict"
	KeyFailureUnexpected   = "failure.unexpected"
	KeyFailureNotYetPaid   = "failure.not_yet_paid"

	// Action labels
	KeyActionFetchAppInstalls       = "action.fetch_app_installs"
	KeyActionFetchLicenses          = "action.fetch_licenses"
	KeyActionFetchRenewalRequests   = "action.fetch_renewal_requests"
	KeyActionFetchUser              = "action.fetch_user"
	KeyActionAcceptRequest          = "action.accept_request"
	KeyActionRejectRequest          = "action.reject_request"
	KeyActionCancelRequest          = "action.cancel_request"
	KeyActionCancelInstall          = "action.cancel_install"
	KeyActionCreateLicense          = "action.create_license"
	KeyActionRenewLicense           = "action.renew_license"
	KeyActionExpireLicense          = "action.expire_license"
	KeyActionCompleteRenewal        = "action.complete_renewal"
	KeyActionWithdrawRenewalRequest = "action.withdraw_renewal_request"

	// Command successes
	KeyRequestAccepted         = "app_install_request.accepted"
	KeyRequestRejected         = "app_install_request.rejected"
	KeyRequestCanceled         = "app_install_request.canceled"
	KeyInstallCanceled         = "app_install.canceled"
	KeyLicenseCreated          = "license.created"
	KeyLicenseRenewalInitiated = "license.renewal_initiated"
	KeyLicenseExpired          = "license.expired"
	KeyLicenseRenewalCompleted = "license.renewal_completed"
	KeyRenewalRequestWithdrawn = "license_renewal_request.withdrawn"

	KeyResourceNotFound = "resource.not_found"
)
