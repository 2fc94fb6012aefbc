// Package tui is the interactive newsroom client. The article table is a
// pure projection of the sync.RowStore; every remote command runs as a
// bubbletea command and resumes the UI through a single completion message,
// and broadcast envelopes arrive as messages from the bus subscription.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/HunterLewis000/newspaper-app/internal/api"
	"github.com/HunterLewis000/newspaper-app/internal/bus"
	"github.com/HunterLewis000/newspaper-app/internal/config"
	"github.com/HunterLewis000/newspaper-app/internal/model"
	"github.com/HunterLewis000/newspaper-app/internal/statusutil"
	syncpkg "github.com/HunterLewis000/newspaper-app/internal/sync"
)

type modal int

const (
	modalNone modal = iota
	modalStatus
	modalFiles
	modalUpload
	modalConfirm
	modalAdd
	modalArchive
)

// statusModal drives the five-stage timeline for one article. The open
// article's identity lives here, in the model, never in package state.
type statusModal struct {
	articleID int64
	stages    []statusutil.StageState
	cursor    int
	loading   bool
	errText   string
}

type filesModal struct {
	articleID int64
	files     []model.FileAttachment
	cursor    int
	loading   bool
	errText   string
}

type confirmModal struct {
	title string
	body  string
	// focus 0 = confirm, 1 = cancel
	focus  int
	action tea.Cmd
	// back restores the modal underneath when the confirm is dismissed.
	back modal
}

type rowEdit struct {
	articleID int64
	inputs    [3]textinput.Model // title, author, deadline
	focus     int
}

type addForm struct {
	inputs [3]textinput.Model
	focus  int
}

// archiveModal browses completed articles; enter returns one to the desk.
type archiveModal struct {
	articles []model.Article
	cursor   int
	loading  bool
	errText  string
}

type appModel struct {
	cfg config.Config

	store    *syncpkg.RowStore
	recon    *syncpkg.Reconciler
	timeline *syncpkg.Timeline
	orders   *syncpkg.OrderSync
	client   *api.Client
	events   <-chan bus.Envelope

	width  int
	height int
	cursor int

	modal   modal
	status  statusModal
	files   filesModal
	confirm confirmModal
	add     addForm
	archive archiveModal
	picker  filepicker.Model

	edit *rowEdit

	notice    string
	noticeErr bool
}

// Messages.

type loadedMsg struct{ err error }

type appliedMsg struct {
	env bus.Envelope
	err error
}

type busClosedMsg struct{}

type opDoneMsg struct {
	op  string
	err error
}

type stagesMsg struct {
	articleID int64
	stages    []statusutil.StageState
	err       error
}

type changeOutcomeMsg struct {
	articleID int64
	out       syncpkg.ChangeOutcome
	err       error
}

type filesMsg struct {
	articleID int64
	files     []model.FileAttachment
	err       error
}

type createdMsg struct {
	article model.Article
	err     error
}

type archivedMsg struct {
	articles []model.Article
	err      error
}

// Run connects to the server and starts the interactive client.
func Run(cfg config.Config) error {
	client := api.NewClient(cfg.ServerURL, cfg.UserName)

	dialCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	conn, err := bus.Dial(dialCtx, cfg.ServerURL)
	cancel()
	if err != nil {
		return err
	}
	defer conn.Close()

	store := syncpkg.NewRowStore()
	m := &appModel{
		cfg:      cfg,
		store:    store,
		recon:    syncpkg.NewReconciler(store, client, conn),
		timeline: syncpkg.NewTimeline(store, client, conn),
		orders:   syncpkg.NewOrderSync(store, client, conn),
		client:   client,
		events:   conn.Subscribe(context.Background()),
	}

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m *appModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.waitEvent())
}

func (m *appModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.recon.Load(context.Background())}
	}
}

// waitEvent blocks on the next broadcast, applies it through the reconciler
// (the store is mutex-guarded), and reports back so the view refreshes.
func (m *appModel) waitEvent() tea.Cmd {
	return func() tea.Msg {
		env, ok := <-m.events
		if !ok {
			return busClosedMsg{}
		}
		err := m.recon.ApplyBroadcast(context.Background(), env)
		return appliedMsg{env: env, err: err}
	}
}

func (m *appModel) opCmd(op string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(context.Background())}
	}
}

func (m *appModel) loadStagesCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		stages, err := m.timeline.Load(context.Background(), id)
		return stagesMsg{articleID: id, stages: stages, err: err}
	}
}

// changeStatusCmd commits a transition the UI has already confirmed (or that
// needs no confirmation). The engine re-checks the regression guard against
// fresh history; confirmed tells it how the user already answered.
func (m *appModel) changeStatusCmd(id int64, next model.Status, confirmed bool) tea.Cmd {
	return func() tea.Msg {
		confirm := func(model.Status, model.Status) bool { return confirmed }
		out, err := m.timeline.ChangeStatus(context.Background(), id, next, confirm)
		return changeOutcomeMsg{articleID: id, out: out, err: err}
	}
}

func (m *appModel) loadFilesCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		files, err := m.client.Files(context.Background(), id)
		return filesMsg{articleID: id, files: files, err: err}
	}
}

func (m *appModel) createCmd(title, author, deadline string) tea.Cmd {
	return func() tea.Msg {
		a, err := m.client.CreateArticle(context.Background(), title, author, deadline)
		return createdMsg{article: a, err: err}
	}
}

func (m *appModel) loadArchivedCmd() tea.Cmd {
	return func() tea.Msg {
		articles, err := m.client.ListArchived(context.Background())
		return archivedMsg{articles: articles, err: err}
	}
}

func (m *appModel) uploadCmd(articleID int64, path string) tea.Cmd {
	return func() tea.Msg {
		err := uploadFromPath(context.Background(), m.client, articleID, path)
		return opDoneMsg{op: "upload", err: err}
	}
}

// selectedRow returns the row under the cursor.
func (m *appModel) selectedRow() (syncpkg.Row, bool) {
	rows := m.store.Snapshot()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return syncpkg.Row{}, false
	}
	return rows[m.cursor], true
}

func (m *appModel) clampCursor() {
	n := m.store.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *appModel) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}
