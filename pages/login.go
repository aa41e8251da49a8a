package pages

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/cvsuite/browser"
)

// LoginPath is the portal's login entry point.
const LoginPath = "/login"

// Login is the sign-in screen.
type Login struct {
	Base

	Header      Element
	Email       Element
	Password    Element
	SignIn      Element
	ProfileName Element
}

func NewLogin(page playwright.Page, timeouts browser.Timeouts) *Login {
	b := newBase(page, timeouts)
	return &Login{
		Base:        b,
		Header:      b.css("[data-lov-name='CardTitle']"),
		Email:       b.css("#email"),
		Password:    b.css("#password"),
		SignIn:      b.css("button[type='submit']"),
		ProfileName: profileName(b),
	}
}

// profileName is the user name shown in the header once signed in.
func profileName(b Base) Element {
	return b.el(b.Page.Locator("header").GetByTestId("user-profile-name").
		Or(b.Page.Locator("xpath=(//div[contains(@class,'flex items-center')]//span)[2]")).First())
}

// Open navigates to the login page of baseURL.
func (p *Login) Open(baseURL string) error {
	return p.Goto(strings.TrimRight(baseURL, "/") + LoginPath)
}

// SignInAs submits the credentials and waits for the post-login marker and
// network quiescence.
func (p *Login) SignInAs(email, password string) error {
	if err := p.Email.Fill(email); err != nil {
		return fmt.Errorf("filling email: %w", err)
	}
	if err := p.Password.Fill(password); err != nil {
		return fmt.Errorf("filling password: %w", err)
	}
	if err := p.SignIn.Click(); err != nil {
		return fmt.Errorf("submitting login: %w", err)
	}
	if err := p.ProfileName.WaitVisible(); err != nil {
		return fmt.Errorf("waiting for post-login marker: %w", err)
	}
	return p.WaitForIdle()
}

// HeaderText returns the card title of the login form.
func (p *Login) HeaderText() (string, bool) {
	return p.Header.Text()
}
