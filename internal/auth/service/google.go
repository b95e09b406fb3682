package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleExchanger implements oauthExchanger over a real oauth2.Config.
type GoogleExchanger struct {
	cfg *oauth2.Config
}

func NewGoogleExchanger(clientID, clientSecret, redirectURL string) *GoogleExchanger {
	return &GoogleExchanger{cfg: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}}
}

func (g *GoogleExchanger) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *GoogleExchanger) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func (g *GoogleExchanger) Userinfo(ctx context.Context, accessToken string) (email, name, picture string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserinfoURL, nil)
	if err != nil {
		return "", "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", "", "", fmt.Errorf("userinfo status %d", res.StatusCode)
	}
	var body struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", "", "", err
	}
	return body.Email, body.Name, body.Picture, nil
}
