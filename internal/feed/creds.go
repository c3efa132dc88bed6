package feed

import "os"

// Credentials holds the Coinbase API key material. The level2 update path
// is unauthenticated; the feed holds the credentials but does not use
// them.
type Credentials struct {
	KeyName    string
	PrivateKey string
}

// CredentialsFromEnv loads credentials from COINBASE_KEY_NAME and
// COINBASE_PRIVATE_KEY. Both must be set; otherwise no credentials are
// returned and the feed runs unauthenticated.
func CredentialsFromEnv() (*Credentials, bool) {
	name := os.Getenv("COINBASE_KEY_NAME")
	key := os.Getenv("COINBASE_PRIVATE_KEY")
	if name == "" || key == "" {
		return nil, false
	}
	return &Credentials{KeyName: name, PrivateKey: key}, true
}
