package flows

// User-facing notification texts.
const (
	MsgAccountCreated  = "Account created successfully!"
	MsgUserExists      = "User already exists with this email. Please sign in instead."
	MsgSignInSuccess   = "Sign in successful!"
	MsgWelcomeBack     = "Welcome back!"
	MsgInvalidLogin    = "Invalid email or password."
	MsgGenericFailure  = "Something went wrong. Please try again."
	MsgSignedOut       = "Signed out successfully"
	MsgAuthFailed      = "Authentication failed. Please sign in again."
	MsgSessionExpired  = "Session expired. Please sign in again."
	MsgProfileUpdated  = "Profile updated successfully!"
	MsgProfileNotSaved = "Failed to update profile. Please try again."
	MsgWeakPassword    = "Password is too weak."
	MsgInvalidSignUp   = "Please enter a valid email and password."
)
