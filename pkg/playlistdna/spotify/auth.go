package spotify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/himanishpuri/PlaylistDNA/pkg/utils"
)

// UserAuth holds the parameters of the authorisation-code flow.
type UserAuth struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string   // Must be registered with the app, e.g. http://127.0.0.1:8888/callback
	Scopes       []string // Defaults to private playlist read access
}

func (u UserAuth) authenticator() *spotifyauth.Authenticator {
	scopes := u.Scopes
	if len(scopes) == 0 {
		scopes = []string{spotifyauth.ScopePlaylistReadPrivate, spotifyauth.ScopePlaylistReadCollaborative}
	}
	return spotifyauth.New(
		spotifyauth.WithClientID(u.ClientID),
		spotifyauth.WithClientSecret(u.ClientSecret),
		spotifyauth.WithRedirectURL(u.RedirectURL),
		spotifyauth.WithScopes(scopes...),
	)
}

// Authorize runs the authorisation-code flow: it serves the redirect URL
// locally, hands the consent URL to prompt and waits for the callback.
func Authorize(ctx context.Context, u UserAuth, prompt func(authURL string)) (*spotifyauth.Authenticator, *oauth2.Token, error) {
	redirect, err := url.Parse(u.RedirectURL)
	if err != nil || redirect.Host == "" {
		return nil, nil, fmt.Errorf("invalid redirect url %q", u.RedirectURL)
	}
	auth := u.authenticator()
	state := utils.GenerateUUID()

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, nil, fmt.Errorf("listening on %s: %w", redirect.Host, err)
	}

	type result struct {
		tok *oauth2.Token
		err error
	}
	done := make(chan result, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		tok, err := auth.Token(r.Context(), state, r)
		if err != nil {
			http.Error(w, "authorisation failed", http.StatusForbidden)
		} else {
			fmt.Fprintln(w, "Authorised. You can close this window.")
		}
		select {
		case done <- result{tok, err}:
		default:
		}
	})
	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)
	defer srv.Close()

	prompt(auth.AuthURL(state))

	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, nil, fmt.Errorf("exchanging authorisation code: %w", res.err)
		}
		if res.tok == nil {
			return nil, nil, errors.New("no token received")
		}
		return auth, res.tok, nil
	}
}

// NewUserClient authorises a user and returns a client acting on their behalf.
func NewUserClient(ctx context.Context, u UserAuth, cfg Config, prompt func(string)) (*Client, error) {
	auth, tok, err := Authorize(ctx, u, prompt)
	if err != nil {
		return nil, err
	}
	return NewFromToken(ctx, auth, tok, cfg), nil
}
