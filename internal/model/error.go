package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON             = "INVALID_JSON"
	ErrCodeValidationFailed        = "VALIDATION_FAILED"
	ErrCodeNotFound                = "NOT_FOUND"
	ErrCodeInvalidPromoCode        = "INVALID_PROMO_CODE"
	ErrCodePromoExpired            = "PROMO_EXPIRED"
	ErrCodeInvalidQuantity         = "INVALID_QUANTITY"
	ErrCodeItemUnavailable         = "ITEM_UNAVAILABLE"
	ErrCodeInvalidAddOn            = "INVALID_ADDON"
	ErrCodeCartEmpty               = "CART_EMPTY"
	ErrCodeCustomerBlocked         = "CUSTOMER_BLOCKED"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodePickupInPast            = "PICKUP_IN_PAST"
	ErrCodeDateInPast              = "DATE_IN_PAST"
	ErrCodeInvalidGuests           = "INVALID_GUESTS"
	ErrCodeInvalidCredentials      = "INVALID_CREDENTIALS"
	ErrCodeConflict                = "CONFLICT"
	ErrCodeSelfAction              = "SELF_ACTION"
	ErrCodePaymentFailed           = "PAYMENT_FAILED"
	ErrCodeInvalidSignature        = "INVALID_SIGNATURE"
	ErrCodeUnauthorised            = "UNAUTHORIZED"
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeInternalError           = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a VALIDATION_FAILED domain error with the given message.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidationFailed, message)
}

// AsDomainError unwraps err into a *DomainError if it carries one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common domain errors
var (
	ErrMenuItemNotFound     = NewDomainError(ErrCodeNotFound, "Menu item not found")
	ErrCategoryNotFound     = NewDomainError(ErrCodeNotFound, "Category not found")
	ErrAddOnNotFound        = NewDomainError(ErrCodeNotFound, "Add-on not found")
	ErrOrderNotFound        = NewDomainError(ErrCodeNotFound, "Order not found")
	ErrReservationNotFound  = NewDomainError(ErrCodeNotFound, "Reservation not found")
	ErrCustomerNotFound     = NewDomainError(ErrCodeNotFound, "No customer found with this email")
	ErrStaffNotFound        = NewDomainError(ErrCodeNotFound, "Staff member not found")
	ErrPromoNotFound        = NewDomainError(ErrCodeNotFound, "Promo code not found")
	ErrCartLineNotFound     = NewDomainError(ErrCodeNotFound, "Cart line not found")
	ErrInvalidPromoCode     = NewDomainError(ErrCodeInvalidPromoCode, "Invalid promo code")
	ErrPromoExpired         = NewDomainError(ErrCodePromoExpired, "This promo code is expired or no longer valid")
	ErrInvalidQuantity      = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be between 1 and 20")
	ErrItemUnavailable      = NewDomainError(ErrCodeItemUnavailable, "Menu item is not available")
	ErrInvalidAddOn         = NewDomainError(ErrCodeInvalidAddOn, "Add-on does not belong to this menu item")
	ErrCartEmpty            = NewDomainError(ErrCodeCartEmpty, "Cart is empty")
	ErrCustomerBlocked      = NewDomainError(ErrCodeCustomerBlocked, "This customer is not allowed to place orders or reservations")
	ErrPickupInPast         = NewDomainError(ErrCodePickupInPast, "Pickup time cannot be in the past")
	ErrDateInPast           = NewDomainError(ErrCodeDateInPast, "Reservation date cannot be in the past")
	ErrTooFewGuests         = NewDomainError(ErrCodeInvalidGuests, "Must have at least 1 guest")
	ErrTooManyGuests        = NewDomainError(ErrCodeInvalidGuests, "For larger groups please call us directly")
	ErrCannotAdvanceOrder   = NewDomainError(ErrCodeInvalidStatusTransition, "Cannot advance this order further")
	ErrCannotCancelOrder    = NewDomainError(ErrCodeInvalidStatusTransition, "Cannot cancel a completed or cancelled order")
	ErrOnlyPendingApprove   = NewDomainError(ErrCodeInvalidStatusTransition, "Only pending reservations can be approved")
	ErrOnlyPendingReject    = NewDomainError(ErrCodeInvalidStatusTransition, "Only pending reservations can be rejected")
	ErrReservationCancelled = NewDomainError(ErrCodeInvalidStatusTransition, "Reservation is already cancelled")
	ErrInvalidCredentials   = NewDomainError(ErrCodeInvalidCredentials, "Invalid username or password")
	ErrNoStaffAccess        = NewDomainError(ErrCodeForbidden, "You do not have staff access")
	ErrStaffDeactivated     = NewDomainError(ErrCodeForbidden, "Your account has been deactivated")
	ErrManagerRequired      = NewDomainError(ErrCodeForbidden, "Manager access required")
	ErrOwnerRequired        = NewDomainError(ErrCodeForbidden, "Owner access required")
	ErrUsernameTaken        = NewDomainError(ErrCodeConflict, "Username is already taken")
	ErrPasswordMismatch     = NewDomainError(ErrCodeValidationFailed, "Passwords do not match")
	ErrPasswordTooShort     = NewDomainError(ErrCodeValidationFailed, "Password must be at least 8 characters")
	ErrSelfAction           = NewDomainError(ErrCodeSelfAction, "You cannot perform this action on your own account")
	ErrNoPaymentFound       = NewDomainError(ErrCodePaymentFailed, "Could not find a payment for this order")
	ErrInvalidSignature     = NewDomainError(ErrCodeInvalidSignature, "Invalid webhook signature")
	ErrUnauthorised         = NewDomainError(ErrCodeUnauthorised, "Authentication required")
	ErrLoginRequired        = NewDomainError(ErrCodeUnauthorised, "Please log in to check out")
	ErrCategoryHasItems     = NewDomainError(ErrCodeConflict, "Category has items. Select a category to move them to first")
	ErrNoteEmpty            = NewDomainError(ErrCodeValidationFailed, "Note cannot be empty")
	ErrInvalidRefundAmount  = NewDomainError(ErrCodeValidationFailed, "Invalid refund amount")
	ErrAlreadyStaff         = NewDomainError(ErrCodeConflict, "Account already has a staff profile")
)
