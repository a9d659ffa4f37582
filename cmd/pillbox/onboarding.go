// This file implements the interactive onboarding flow using bubbletea.
package main

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"pillbox/cmd/pillbox/ui"
	"pillbox/internal/api"
	"pillbox/internal/app"
	"pillbox/internal/onboarding"
	"pillbox/internal/prep"
	"pillbox/internal/session"
	"pillbox/internal/theme"
)

// carouselPages is the welcome content shown before sign-up, one markdown
// document per page.
var carouselPages = []string{
	`# Never miss a dose

pillbox keeps your medication schedule in one place and reminds you
exactly when it matters.

- Daily and weekly schedules
- Snooze-aware reminders
- Works offline`,
	`# Built for caregivers too

Share schedules with family members and get notified when a dose is
confirmed or missed.

- Shared medication lists
- Dose confirmation history
- Refill alerts before you run out`,
	`# Your data stays yours

Everything is stored on your device first and synced end-to-end
encrypted. Sign up to get started, or sign in if you already have an
account.`,
}

// Messages delivered from outside the bubbletea loop.
type (
	appearanceMsg   struct{ appearance theme.Appearance }
	prepProgressMsg struct{ progress prep.Progress }
	prepDoneMsg     struct{}
	flowFinishedMsg struct{}
	flowSkippedMsg  struct{}
	authResultMsg   struct {
		sess *session.Session
		err  error
	}
	sessionSavedMsg struct{ err error }
)

const (
	focusName = iota
	focusEmail
	focusPassword
)

// flowModel drives the onboarding screens: carousel, sign-up/sign-in forms,
// the preparation sequence, and the success screen. All flow transitions go
// through onboarding.Flow; the model only translates key presses and
// renders.
type flowModel struct {
	ctx context.Context
	app *app.App
	log *zap.Logger

	flow *onboarding.Flow
	seq  *prep.Sequencer

	// events carries callback-driven messages (theme changes, preparation
	// progress, flow completion) into the update loop.
	events chan tea.Msg

	styles ui.Styles
	pages  []string

	width  int
	height int

	// scrollX is the simulated horizontal scroll offset of the carousel;
	// the active page index is derived from it.
	scrollX float64

	nameInput     textinput.Model
	emailInput    textinput.Model
	passwordInput textinput.Model
	focus         int
	formErr       string
	submitting    bool

	bar  progress.Model
	spin spinner.Model
	prog prep.Progress
}

func newFlowModel(ctx context.Context, a *app.App, log *zap.Logger) flowModel {
	events := make(chan tea.Msg, 16)

	fl := onboarding.NewFlow(a.Sessions, onboarding.Callbacks{
		OnFinish: func() { events <- flowFinishedMsg{} },
		OnSkip:   func() { events <- flowSkippedMsg{} },
	}, log)

	seq := prep.New(a.Sessions, prep.Config{
		OnProgress: func(p prep.Progress) { events <- prepProgressMsg{progress: p} },
		OnComplete: func() { events <- prepDoneMsg{} },
		Logger:     log,
	})

	name := textinput.New()
	name.Placeholder = "Full name"
	name.CharLimit = 100

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 100

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 100

	m := flowModel{
		ctx:           ctx,
		app:           a,
		log:           log,
		flow:          fl,
		seq:           seq,
		events:        events,
		styles:        ui.NewStyles(ui.ForAppearance(a.Theme.Appearance())),
		width:         80,
		height:        24,
		nameInput:     name,
		emailInput:    email,
		passwordInput: password,
		bar:           progress.New(progress.WithDefaultGradient()),
		spin:          spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.rebuildPages()
	return m
}

func (m flowModel) Init() tea.Cmd {
	return tea.Batch(m.listen(), m.spin.Tick)
}

// listen re-arms the external event channel; every handler that consumes an
// event message returns it again.
func (m flowModel) listen() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func (m flowModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(msg.Width-10, 50)
		m.rebuildPages()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case appearanceMsg:
		m.styles = ui.NewStyles(ui.ForAppearance(msg.appearance))
		m.rebuildPages()
		return m, m.listen()

	case prepProgressMsg:
		m.prog = msg.progress
		return m, m.listen()

	case prepDoneMsg:
		// A guard short-circuit finishes immediately; only a real run earns
		// the success screen.
		if m.app.Sessions.IsAuthenticated() {
			m.flow.Succeed()
		} else {
			m.flow.PreparationDone()
		}
		return m, m.listen()

	case flowFinishedMsg, flowSkippedMsg:
		if err := m.app.Seen.MarkAsSeen(m.ctx); err != nil {
			m.log.Warn("failed to mark onboarding as seen", zap.Error(err))
		}
		return m, tea.Quit

	case authResultMsg:
		if msg.err != nil {
			m.submitting = false
			m.formErr = msg.err.Error()
			return m, nil
		}
		return m, m.saveSession(*msg.sess)

	case sessionSavedMsg:
		m.submitting = false
		if msg.err != nil {
			m.formErr = fmt.Sprintf("signed in, but saving the session failed: %v", msg.err)
			return m, nil
		}
		m.flow.Complete()
		m.seq.Run(m.ctx)
		return m, nil
	}

	return m, nil
}

func (m flowModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+t":
		// Theme change lands through the resolver's listener as an
		// appearanceMsg, so styles rebuild on the event, not here.
		if err := m.app.Theme.Toggle(m.ctx); err != nil {
			m.log.Warn("theme toggle failed", zap.Error(err))
		}
		return m, nil
	}

	switch m.flow.Screen().Kind {
	case onboarding.ScreenCarousel:
		return m.handleCarouselKey(key)
	case onboarding.ScreenSignUp, onboarding.ScreenSignIn:
		return m.handleFormKey(msg)
	case onboarding.ScreenPreparing:
		return m.handlePreparingKey(key)
	case onboarding.ScreenSuccess:
		if key == "enter" {
			m.flow.PreparationDone()
		}
		return m, nil
	}
	return m, nil
}

func (m flowModel) handleCarouselKey(key string) (tea.Model, tea.Cmd) {
	width := float64(m.width)
	lastPage := m.flow.Screen().Step == onboarding.TotalCarouselSteps-1

	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "right", "l":
		m.scrollX = math.Min(m.scrollX+width, width*float64(onboarding.TotalCarouselSteps-1))
		m.flow.HandleScroll(m.scrollX, width)
	case "left", "h":
		m.scrollX = math.Max(m.scrollX-width, 0)
		m.flow.HandleScroll(m.scrollX, width)
	case "s":
		m.flow.Skip()
	case "enter":
		if lastPage {
			m.flow.CreateAccount()
			return m.focusForm()
		}
		m.scrollX = math.Min(m.scrollX+width, width*float64(onboarding.TotalCarouselSteps-1))
		m.flow.HandleScroll(m.scrollX, width)
	case "i":
		if lastPage {
			m.flow.Login()
			return m.focusForm()
		}
	}
	return m, nil
}

// focusForm prepares the text inputs when a form screen is entered.
func (m flowModel) focusForm() (tea.Model, tea.Cmd) {
	m.formErr = ""
	m.nameInput.Blur()
	m.emailInput.Blur()
	m.passwordInput.Blur()

	if m.flow.Screen().Kind == onboarding.ScreenSignUp {
		m.focus = focusName
		return m, m.nameInput.Focus()
	}
	m.focus = focusEmail
	return m, m.emailInput.Focus()
}

func (m flowModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	signUp := m.flow.Screen().Kind == onboarding.ScreenSignUp

	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		return m.cycleFocus(1, signUp)
	case "shift+tab", "up":
		return m.cycleFocus(-1, signUp)
	case "ctrl+s":
		// Switch between sign-up and sign-in without losing typed input.
		if signUp {
			m.flow.GoToSignIn()
		} else {
			m.flow.GoToSignUp()
		}
		return m.focusForm()
	case "enter":
		if m.submitting {
			return m, nil
		}
		return m.submit(signUp)
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case focusEmail:
		m.emailInput, cmd = m.emailInput.Update(msg)
	case focusPassword:
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m flowModel) cycleFocus(dir int, signUp bool) (tea.Model, tea.Cmd) {
	first := focusEmail
	if signUp {
		first = focusName
	}
	fields := focusPassword - first + 1

	m.focus = first + ((m.focus-first+dir)+fields)%fields

	m.nameInput.Blur()
	m.emailInput.Blur()
	m.passwordInput.Blur()
	switch m.focus {
	case focusName:
		return m, m.nameInput.Focus()
	case focusEmail:
		return m, m.emailInput.Focus()
	default:
		return m, m.passwordInput.Focus()
	}
}

func (m flowModel) submit(signUp bool) (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.nameInput.Value())
	email := strings.TrimSpace(m.emailInput.Value())
	password := m.passwordInput.Value()

	if signUp && name == "" {
		m.formErr = "name is required"
		return m, nil
	}
	if email == "" || password == "" {
		m.formErr = "email and password are required"
		return m, nil
	}

	m.formErr = ""
	m.submitting = true
	return m, func() tea.Msg {
		var sess *session.Session
		var err error
		if signUp {
			sess, err = api.SignUp(m.ctx, m.app.API, name, email, password)
		} else {
			sess, err = api.SignIn(m.ctx, m.app.API, email, password)
		}
		return authResultMsg{sess: sess, err: err}
	}
}

func (m flowModel) saveSession(sess session.Session) tea.Cmd {
	return func() tea.Msg {
		return sessionSavedMsg{err: m.app.Sessions.Login(m.ctx, sess)}
	}
}

func (m flowModel) handlePreparingKey(key string) (tea.Model, tea.Cmd) {
	if m.prog.Err == "" {
		return m, nil
	}
	switch key {
	case "r":
		m.seq.Retry(m.ctx)
	case "c":
		m.seq.Continue()
	}
	return m, nil
}

// rebuildPages re-renders the carousel markdown for the current width and
// appearance.
func (m *flowModel) rebuildPages() {
	style := "light"
	if m.styles.Theme.IsDark {
		style = "dark"
	}

	wrap := min(m.width-8, 64)
	if wrap < 20 {
		wrap = 20
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.pages = carouselPages
		return
	}

	pages := make([]string, len(carouselPages))
	for i, page := range carouselPages {
		out, err := renderer.Render(page)
		if err != nil {
			out = page
		}
		pages[i] = out
	}
	m.pages = pages
}

func (m flowModel) View() string {
	var body string
	switch m.flow.Screen().Kind {
	case onboarding.ScreenCarousel:
		body = m.viewCarousel()
	case onboarding.ScreenSignUp:
		body = m.viewForm(true)
	case onboarding.ScreenSignIn:
		body = m.viewForm(false)
	case onboarding.ScreenPreparing:
		body = m.viewPreparing()
	case onboarding.ScreenSuccess:
		body = m.viewSuccess()
	}
	return body
}

func (m flowModel) viewCarousel() string {
	step := m.flow.Screen().Step

	var dots []string
	for i := 0; i < onboarding.TotalCarouselSteps; i++ {
		if i == step {
			dots = append(dots, m.styles.ActiveDot.Render("●"))
		} else {
			dots = append(dots, m.styles.Dot.Render("○"))
		}
	}

	var footer string
	if step == onboarding.TotalCarouselSteps-1 {
		footer = m.styles.Footer.Render("enter: create account • i: sign in • ←/→: browse • ctrl+t: theme")
	} else {
		footer = m.styles.Footer.Render("←/→: browse • s: skip • ctrl+t: theme • q: quit")
	}

	page := ""
	if step < len(m.pages) {
		page = m.pages[step]
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Card.Render(page),
		"  "+strings.Join(dots, " "),
		"",
		footer,
	)
}

func (m flowModel) viewForm(signUp bool) string {
	title := "Sign in"
	hint := "enter: sign in • ctrl+s: create an account instead"
	if signUp {
		title = "Create your account"
		hint = "enter: sign up • ctrl+s: sign in instead"
	}

	var fields []string
	if signUp {
		fields = append(fields, m.styles.Input.Render(m.nameInput.View()))
	}
	fields = append(fields,
		m.styles.Input.Render(m.emailInput.View()),
		m.styles.Input.Render(m.passwordInput.View()),
	)

	var status string
	switch {
	case m.submitting:
		status = m.styles.Muted.Render(m.spin.View() + " contacting server...")
	case m.formErr != "":
		status = m.styles.Error.Render(m.formErr)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render(title),
		m.styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left, fields...)),
		status,
		"",
		m.styles.Footer.Render(hint+" • tab: next field • ctrl+t: theme"),
	)
}

func (m flowModel) viewPreparing() string {
	var lines []string
	lines = append(lines, m.styles.Title.Render("Setting things up"))

	if m.prog.Err != "" {
		lines = append(lines,
			m.styles.Error.Render(m.prog.Err),
			m.bar.ViewAs(float64(m.prog.Percent)/100),
			"",
			m.styles.Footer.Render("r: retry • c: continue anyway"),
		)
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	step := m.prog.Step
	if step == "" {
		step = "Starting"
	}
	lines = append(lines,
		m.styles.Body.Render(m.spin.View()+" "+step),
		m.bar.ViewAs(float64(m.prog.Percent)/100),
	)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m flowModel) viewSuccess() string {
	name := "there"
	if sess := m.app.Sessions.Current(); sess != nil && sess.User.Name != "" {
		name = sess.User.Name
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Success.Render("✓ You're all set, "+name+"!"),
		m.styles.Body.Render("Your medication schedule is ready."),
		"",
		m.styles.Footer.Render("enter: continue"),
	)
}

// runOnboarding starts the interactive flow. After the first completed (or
// skipped) run it becomes a no-op status report until reset-onboarding.
func runOnboarding(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Teardown()

	if a.Seen.HasSeen(ctx) {
		if sess := a.Sessions.Current(); sess != nil {
			fmt.Printf("Welcome back, %s.\n", sess.User.Name)
		} else {
			fmt.Println("Onboarding already completed. Run 'pillbox reset-onboarding' to see it again.")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newFlowModel(ctx, a, logger)
	unsub := a.Theme.OnChange(func(ap theme.Appearance) {
		m.events <- appearanceMsg{appearance: ap}
	})
	defer unsub()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
