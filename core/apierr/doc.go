// Package apierr defines the error taxonomy shared by every unichat package.
//
// Each failure is an [*Error] carrying one sentinel kind ([ErrConfigLoad],
// [ErrNotFound], [ErrInvalidParameter], [ErrUnsupportedAPIType],
// [ErrCredentialNotFound], [ErrAPIClient], [ErrResponseConversion]) plus the
// failing operation and an optional cause. Classify with errors.Is:
//
//	if errors.Is(err, apierr.ErrNotFound) {
//	    // caller-correctable, the message lists valid alternatives
//	}
//
// Client-side kinds also match [ErrAPIClient], so a single check catches
// every request-level failure.
package apierr
