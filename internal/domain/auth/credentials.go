package auth

// ClientRegistry holds the Cognito app clients registered for the user pool.
// It is built once from configuration and is read-only afterwards.
type ClientRegistry struct {
	LegacyClientID     string
	WebClientID        string
	MobileClientID     string
	WebClientSecret    string
	MobileClientSecret string
}

// Resolve selects the app client for a platform.
//
// The platform-specific client wins when configured. Otherwise the web client
// is preferred over the legacy single client. The secret always belongs to
// the client that was chosen; the legacy client has none.
func (r ClientRegistry) Resolve(p Platform) (ClientCredential, error) {
	switch {
	case p == PlatformMobile && r.MobileClientID != "":
		return ClientCredential{ClientID: r.MobileClientID, ClientSecret: r.MobileClientSecret}, nil
	case p == PlatformWeb && r.WebClientID != "":
		return ClientCredential{ClientID: r.WebClientID, ClientSecret: r.WebClientSecret}, nil
	case r.WebClientID != "":
		return ClientCredential{ClientID: r.WebClientID, ClientSecret: r.WebClientSecret}, nil
	case r.LegacyClientID != "":
		return ClientCredential{ClientID: r.LegacyClientID}, nil
	}
	return ClientCredential{}, ClientNotConfiguredError(p)
}

// Configured reports whether any platform can resolve a client
func (r ClientRegistry) Configured() bool {
	return r.MobileClientID != "" || r.WebClientID != "" || r.LegacyClientID != ""
}
