package fakeportal

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/samber/lo"

	"github.com/networkteam/cvsuite/pages"
)

// html writes markup and keeps the first write error. String arguments of
// printf are escaped.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) printf(format string, args ...any) {
	if h.err != nil {
		return
	}
	escaped := lo.Map(args, func(arg any, _ int) any {
		if s, ok := arg.(string); ok {
			return templ.EscapeString(s)
		}
		return arg
	})
	_, h.err = fmt.Fprintf(h.w, format, escaped...)
}

func (h *html) component(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

func view(fn func(ctx context.Context, h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		fn(ctx, h)
		return h.err
	})
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	templ.Handler(c, templ.WithStatus(status)).ServeHTTP(w, r)
}

func document(title string, body templ.Component) templ.Component {
	return view(func(ctx context.Context, h *html) {
		h.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s | CV Portal</title></head><body>`, title)
		h.component(ctx, body)
		h.raw(`</body></html>`)
	})
}

func loginView(message string) templ.Component {
	return document("Sign in", view(func(_ context.Context, h *html) {
		h.raw(`<div data-lov-name="Card"><h3 data-lov-name="CardTitle">Welcome back</h3>`)
		if message != "" {
			h.printf(`<p role="alert">%s</p>`, message)
		}
		h.raw(`<form method="post" action="/login">` +
			`<label for="email">Email</label><input id="email" name="email" type="email" autocomplete="username">` +
			`<label for="password">Password</label><input id="password" name="password" type="password" autocomplete="current-password">` +
			`<button type="submit">Sign in</button></form></div>`)
	}))
}

// layout renders the header with the account menu and the role's sidebar
// around content.
func layout(account Account, content templ.Component) templ.Component {
	return document(account.Name, view(func(ctx context.Context, h *html) {
		h.printf(`<header><div class="flex items-center"><span>CV Portal</span><span data-testid="user-profile-name">%s</span></div>`, account.Name)
		h.raw(`<form method="post" action="/logout"><button type="submit">Sign out</button></form></header>`)

		h.raw(`<nav aria-label="Sidebar"><a href="/">Dashboard</a>`)
		sections := Sections(account.Role)
		for _, group := range lo.Uniq(lo.Map(sections, func(s pages.ModuleSpec, _ int) string { return s.Group })) {
			h.printf(`<section><p>%s</p>`, group)
			for _, s := range lo.Filter(sections, func(s pages.ModuleSpec, _ int) bool { return s.Group == group }) {
				h.printf(`<a href="%s">%s</a>`, s.DefaultPath, s.Sidebar)
			}
			h.raw(`</section>`)
		}
		h.raw(`</nav><main>`)
		h.component(ctx, content)
		h.raw(`</main>`)
	}))
}

func dashboardView(account Account) templ.Component {
	return view(func(_ context.Context, h *html) {
		h.raw(`<h1>Dashboard</h1>`)
		h.printf(`<p>Signed in as %s (%s)</p>`, account.Email, roleLabel(account.Role))
	})
}

func unauthorizedView() templ.Component {
	return view(func(_ context.Context, h *html) {
		h.raw(`<h1>Unauthorized</h1><p>You do not have permission to view this page.</p><a href="/">Back to dashboard</a>`)
	})
}

func moduleView(spec pages.ModuleSpec) templ.Component {
	return view(func(_ context.Context, h *html) {
		h.printf(`<h1>%s</h1><p>%s</p>`, spec.Sidebar, spec.Group)
	})
}

var cvStats = []string{"Profiles Created", "Overall Progress", "High Achievers", "Steady Progress"}

func cvDashboardView(categories []string) templ.Component {
	return view(func(_ context.Context, h *html) {
		h.raw(`<h1>CV Dashboard</h1><div class="stats">`)
		for i, stat := range cvStats {
			h.printf(`<div class="card"><span>%s</span><strong>%d</strong></div>`, stat, (i+1)*7)
		}
		h.raw(`</div><div class="categories">`)
		for _, c := range categories {
			h.printf(`<button type="button">%s</button>`, c)
		}
		h.raw(`</div><ul class="legend">`)
		for _, c := range categories {
			h.printf(`<li>%s</li>`, c)
		}
		h.raw(`</ul>`)
	})
}

func userListView(query string, users []User) templ.Component {
	return view(func(_ context.Context, h *html) {
		h.raw(`<h1>User Management</h1>`)
		h.printf(`<form method="get" action="%s"><input name="q" placeholder="Search by name or email" value="%s"><button type="submit">Search</button></form>`,
			pages.UserManagementModule.DefaultPath, query)

		if len(users) == 0 {
			h.raw(`<p>No users found</p>`)
			return
		}
		if len(users) == 1 {
			h.raw(`<p>1 user found</p>`)
		} else {
			h.printf(`<p>%d users found</p>`, len(users))
		}

		// Row markup mirrors the portal: the email div sits next to the name
		// and is followed by employee id, role and SBU.
		h.raw(`<div class="user-list">`)
		for _, u := range users {
			h.printf(`<div class="user-item" data-user-id="%s">`, u.ID.String())
			h.raw(`<button type="button" aria-label="Toggle details">+</button>`)
			h.printf(`<div><div class="user-row"><div><div>%s</div><div>%s</div></div>`, u.Name, u.Email)
			h.printf(`<div>%s</div><div>%s</div><div>%s</div>`, u.EmployeeID, u.Role, u.SBU)
			h.raw(`<button type="button">Reset Password</button><button type="button">Edit</button><button type="button">Delete</button></div></div>`)
			h.printf(`<div class="details"><span>Expertise:</span><span>%s</span><span>Resource Type:</span><span>%s</span></div>`, u.Expertise, u.ResourceType)
			h.raw(`</div>`)
		}
		h.raw(`</div>`)
	})
}
