package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
)

// OOB is the out-of-band redirect URI for installed applications. The consent
// flow shows the authorization code in the browser for the user to paste back.
const OOB = "urn:ietf:wg:oauth:2.0:oob"

// Store manages the OAuth2 application identity and the on-disk token cache.
// It is the single owner of cached credentials for the running process.
type Store struct {
	conf     *oauth2.Config
	tokenDir string
}

// NewStore creates a credential store from a client-descriptor JSON file
// (the client_secret.json downloaded from the Google Cloud console).
// Tokens are cached under tokenDir; if tokenDir is empty the user cache
// directory is used.
func NewStore(clientSecretFile, tokenDir string) (*Store, error) {
	data, err := os.ReadFile(clientSecretFile)
	if err != nil {
		return nil, &Error{Op: "load-client-secret", Err: fmt.Errorf("failed to read %s: %w", clientSecretFile, err)}
	}

	conf, err := google.ConfigFromJSON(data, calendar.CalendarScope)
	if err != nil {
		return nil, &Error{Op: "load-client-secret", Err: fmt.Errorf("failed to parse client secret: %w", err)}
	}
	if conf.RedirectURL == "" {
		conf.RedirectURL = OOB
	}

	if tokenDir == "" {
		tokenDir = filepath.Join(userCacheDir(), "calchat")
	}

	return &Store{conf: conf, tokenDir: tokenDir}, nil
}

// HasToken checks if a cached token exists for the specified account.
func (s *Store) HasToken(account string) bool {
	if account == "" {
		return false
	}
	_, err := os.Stat(s.tokenFile(account))
	return err == nil
}

// AuthCodeURL returns the consent URL for user authorization.
func (s *Store) AuthCodeURL() string {
	return s.conf.AuthCodeURL("state", oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for tokens and persists them for the
// specified account.
func (s *Store) Exchange(ctx context.Context, account, authCode string) error {
	tok, err := s.conf.Exchange(ctx, authCode)
	if err != nil {
		return &Error{Op: "exchange", Account: account, Err: fmt.Errorf("failed to exchange auth code: %w", err)}
	}
	if err := s.saveToken(account, tok); err != nil {
		return &Error{Op: "exchange", Account: account, Err: err}
	}
	return nil
}

// TokenSource returns an OAuth2 token source for the cached token of the
// specified account. Refreshed tokens are written back to the cache so the
// next process start does not need to refresh again.
func (s *Store) TokenSource(ctx context.Context, account string) (oauth2.TokenSource, error) {
	tok, err := s.loadToken(account)
	if err != nil {
		return nil, &Error{Op: "token", Account: account, Err: ErrConsentRequired}
	}

	return &savingTokenSource{
		src:     s.conf.TokenSource(ctx, tok),
		store:   s,
		account: account,
		last:    tok,
	}, nil
}

// Token returns valid credentials for the specified account. The returned
// token is never expired: an expired cached token is silently refreshed via
// its refresh token. If no cached token exists or the refresh is rejected,
// an *Error wrapping ErrConsentRequired is returned.
func (s *Store) Token(ctx context.Context, account string) (*oauth2.Token, error) {
	ts, err := s.TokenSource(ctx, account)
	if err != nil {
		return nil, err
	}

	tok, err := ts.Token()
	if err != nil {
		return nil, &Error{Op: "refresh", Account: account, Err: fmt.Errorf("%w: %v", ErrConsentRequired, err)}
	}
	return tok, nil
}

// HTTPClient returns an HTTP client configured with OAuth2 authentication for
// the specified account. The client is configured to use HTTP/1.1 to avoid
// HTTP/2 protocol errors against the Google APIs.
func (s *Store) HTTPClient(ctx context.Context, account string) (*http.Client, error) {
	ts, err := s.TokenSource(ctx, account)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	return client, nil
}

func (s *Store) tokenFile(account string) string {
	return filepath.Join(s.tokenDir, fmt.Sprintf("google-%s.token", account))
}

func (s *Store) saveToken(account string, tok *oauth2.Token) error {
	if err := os.MkdirAll(s.tokenDir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(s.tokenFile(account), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (s *Store) loadToken(account string) (*oauth2.Token, error) {
	data, err := os.ReadFile(s.tokenFile(account))
	if err != nil {
		return nil, fmt.Errorf("no cached token for account %s: %w", account, err)
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("invalid token file for account %s: %w", account, err)
	}
	if tok.RefreshToken == "" && tok.AccessToken == "" {
		return nil, fmt.Errorf("empty token file for account %s", account)
	}
	return tok, nil
}

// savingTokenSource persists refreshed tokens back to the store.
type savingTokenSource struct {
	src     oauth2.TokenSource
	store   *Store
	account string
	last    *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	if s.last == nil || tok.AccessToken != s.last.AccessToken {
		// Best effort; a failed write only costs a refresh on the next run.
		_ = s.store.saveToken(s.account, tok)
		s.last = tok
	}
	return tok, nil
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		panic("No Windows TEMP or TMP environment variables found")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
