package userdata

// EmailTypeAccount marks the email address of the Google account itself,
// as opposed to addresses the user added to their profile.
const EmailTypeAccount = "account"

// Email is a single address from the user's profile.
type Email struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

// Profile gathered after a successful oauth2 callback
type Profile struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name,omitempty"`
	Emails      []Email `json:"emails"`
}

// Info returned by the session endpoint for a signed-in browser.
type SessionUserInfo struct {
	Email string `json:"email"`
}
