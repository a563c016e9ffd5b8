// Package summary provides the AI summary view for the TUI: the summary of
// one result followed by its follow-up conversation.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-wiki/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driving"
)

// View is the summary view.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	summary driving.SummaryService
	origin  string
	ctx     context.Context

	viewport viewport.Model
	spinner  spinner.Model
	ask      *input.Field

	result       *domain.Result
	key          domain.SummaryKey
	current      *driving.SummaryView
	conversation []domain.Message

	loading bool
	asking  bool
	pending string
	err     error

	width  int
	height int
	ready  bool
}

// NewView creates a new summary view.
func NewView(s *styles.Styles, km *keymap.KeyMap, summary driving.SummaryService, origin string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	ask := input.NewQuestionInput(s)
	ask.Blur()

	return &View{
		styles:   s,
		keymap:   km,
		summary:  summary,
		origin:   origin,
		ctx:      context.Background(),
		viewport: viewport.New(80, 16),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		ask:      ask,
		width:    80,
		height:   24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Open shows the summary of result, generating it when it is not cached
// or when regenerate is set.
func (v *View) Open(result domain.Result, regenerate bool) tea.Cmd {
	v.result = &result
	v.key = domain.SummaryKey{ContentID: result.ID, Origin: v.origin}
	v.current = nil
	v.conversation = nil
	v.err = nil
	v.pending = ""
	v.asking = false
	v.ask.Reset()
	v.ask.Blur()
	v.loading = true
	v.render()

	return tea.Batch(v.spinner.Tick, v.load(regenerate))
}

// load fetches or generates the summary.
func (v *View) load(regenerate bool) tea.Cmd {
	svc := v.summary
	ctx := v.ctx
	key := v.key
	title := v.result.Title
	return func() tea.Msg {
		if svc == nil {
			return messages.SummaryLoaded{Key: key, Err: domain.ErrLLMUnavailable}
		}
		var (
			view *driving.SummaryView
			err  error
		)
		if regenerate {
			view, err = svc.Regenerate(ctx, key, title)
		} else {
			view, err = svc.Summarise(ctx, key, title)
		}
		return messages.SummaryLoaded{Key: key, View: view, Err: err}
	}
}

// loadConversation fetches the follow-up messages for the open summary.
func (v *View) loadConversation() tea.Cmd {
	if v.summary == nil {
		return nil
	}
	svc := v.summary
	ctx := v.ctx
	key := v.key
	return func() tea.Msg {
		msgs, err := svc.Conversation(ctx, key)
		return messages.ConversationLoaded{Key: key, Messages: msgs, Err: err}
	}
}

// sendQuestion asks a follow-up question about the open summary.
func (v *View) sendQuestion(question string) tea.Cmd {
	svc := v.summary
	ctx := v.ctx
	key := v.key
	title := v.result.Title
	return func() tea.Msg {
		if svc == nil {
			return messages.AnswerReceived{Key: key, Question: question, Err: domain.ErrLLMUnavailable}
		}
		answer, err := svc.Ask(ctx, key, title, question)
		return messages.AnswerReceived{Key: key, Question: question, Answer: answer, Err: err}
	}
}

// clearConversation drops the follow-up messages, keeping the summary.
func (v *View) clearConversation() tea.Cmd {
	if v.summary == nil {
		return nil
	}
	svc := v.summary
	ctx := v.ctx
	key := v.key
	return func() tea.Msg {
		if err := svc.ClearConversation(ctx, key); err != nil {
			return messages.ConversationLoaded{Key: key, Err: err}
		}
		return messages.ConversationLoaded{Key: key}
	}
}

// Update handles messages for the summary view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SummaryLoaded:
		if msg.Key != v.key {
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			v.render()
			return v, nil
		}
		v.err = nil
		v.current = msg.View
		v.render()
		return v, v.loadConversation()

	case messages.ConversationLoaded:
		if msg.Key != v.key {
			return v, nil
		}
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.conversation = msg.Messages
		}
		v.render()
		return v, nil

	case messages.AnswerReceived:
		if msg.Key != v.key {
			return v, nil
		}
		v.pending = ""
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.err = nil
			v.conversation = append(v.conversation,
				domain.Message{Role: domain.RoleUser, Content: msg.Question},
				domain.Message{Role: domain.RoleAssistant, Content: msg.Answer},
			)
		}
		v.render()
		v.viewport.GotoBottom()
		return v, nil

	case spinner.TickMsg:
		if !v.loading && v.pending == "" {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	if v.asking {
		var cmd tea.Cmd
		v.ask, cmd = v.ask.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.asking {
		return v.handleAskKey(msg)
	}

	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSearch}
		}

	case keymap.Matches(key, v.keymap.Ask):
		if v.current == nil || v.pending != "" {
			return v, nil
		}
		v.asking = true
		return v, v.ask.Focus()

	case keymap.Matches(key, v.keymap.Regenerate):
		if v.result == nil || v.loading {
			return v, nil
		}
		return v, v.Open(*v.result, true)

	case key == "c":
		if v.current == nil {
			return v, nil
		}
		return v, v.clearConversation()

	case key == "home", key == "g":
		v.viewport.GotoTop()
		return v, nil

	case key == "end", key == "G":
		v.viewport.GotoBottom()
		return v, nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// handleAskKey handles typing a follow-up question.
func (v *View) handleAskKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEnter:
		question := strings.TrimSpace(v.ask.Value())
		v.asking = false
		v.ask.Blur()
		v.ask.Reset()
		if question == "" {
			return v, nil
		}
		v.pending = question
		v.render()
		return v, tea.Batch(v.spinner.Tick, v.sendQuestion(question))
	case tea.KeyEsc:
		v.asking = false
		v.ask.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.ask, cmd = v.ask.Update(msg)
	return v, cmd
}

// render lays out the summary and conversation into the viewport.
func (v *View) render() {
	width := v.contentWidth()
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	if v.current != nil {
		b.WriteString(wrap.Render(v.current.Entry.SummaryText))
		b.WriteString("\n")
	}

	for _, m := range v.conversation {
		b.WriteString("\n")
		switch m.Role {
		case domain.RoleUser:
			b.WriteString(v.styles.Question.Render("You: "))
			b.WriteString(wrap.Render(m.Content))
		case domain.RoleAssistant:
			b.WriteString(v.styles.Subtitle.Render("Assistant:"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(m.Content))
		case domain.RoleSystem:
			continue
		}
		b.WriteString("\n")
	}

	if v.pending != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Question.Render("You: "))
		b.WriteString(wrap.Render(v.pending))
		b.WriteString("\n")
	}

	v.viewport.SetContent(b.String())
}

// contentWidth is the wrap width for summary text.
func (v *View) contentWidth() int {
	w := v.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

// View renders the summary view.
func (v *View) View() string {
	var b strings.Builder

	title := "Summary"
	if v.result != nil {
		title = v.result.Title
		if title == "" {
			title = v.result.ID
		}
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	if v.result != nil {
		if crumb := v.result.Breadcrumb(" › "); crumb != "" {
			b.WriteString(v.styles.Muted.Render(crumb))
			b.WriteString("\n")
		}
	}
	b.WriteString(strings.Repeat("─", minInt(v.width-4, 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.spinner.View() + " " + v.styles.Muted.Render("Summarising..."))
		b.WriteString("\n\n")
	case v.err != nil && v.current == nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	default:
		b.WriteString(v.viewport.View())
		b.WriteString("\n\n")
		if v.err != nil {
			b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
			b.WriteString("\n")
		}
		if v.pending != "" {
			b.WriteString(v.spinner.View() + " " + v.styles.Muted.Render("Thinking..."))
			b.WriteString("\n")
		}
		if line := v.provenance(); line != "" {
			b.WriteString(v.styles.Muted.Render(line))
			b.WriteString("\n")
		}
	}

	if v.asking {
		b.WriteString(v.ask.View())
		b.WriteString("\n")
	}

	b.WriteString(v.renderHelp())
	return b.String()
}

// provenance describes where the summary came from.
func (v *View) provenance() string {
	if v.current == nil {
		return ""
	}
	entry := v.current.Entry
	source := "generated"
	if v.current.Cached {
		source = "cached"
	}
	parts := []string{source}
	if !entry.StoredAt.IsZero() {
		parts = append(parts, entry.StoredAt.Local().Format("2006-01-02 15:04"))
	}
	if entry.Model != "" {
		parts = append(parts, entry.Model)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	if v.asking {
		return v.styles.Help.Render("[enter] send  [esc] cancel")
	}
	return v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [a] ask  [r] regenerate  [c] clear conversation  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// Reserve lines for title, breadcrumb, separator, provenance, input and help
	vh := height - 10
	if vh < 3 {
		vh = 3
	}
	v.viewport.Width = width
	v.viewport.Height = vh
	v.ask.SetWidth(width)
	v.render()
}

// Result returns the result whose summary is shown.
func (v *View) Result() *domain.Result {
	return v.result
}

// Key returns the summary key of the open result.
func (v *View) Key() domain.SummaryKey {
	return v.key
}

// Current returns the loaded summary, or nil while loading.
func (v *View) Current() *driving.SummaryView {
	return v.current
}

// Conversation returns the follow-up messages shown.
func (v *View) Conversation() []domain.Message {
	return v.conversation
}

// Loading reports whether the summary is being generated.
func (v *View) Loading() bool {
	return v.loading
}

// Asking reports whether the question input has focus.
func (v *View) Asking() bool {
	return v.asking
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
