package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/HunterLewis000/newspaper-app/internal/api"
	"github.com/HunterLewis000/newspaper-app/internal/bus"
	"github.com/HunterLewis000/newspaper-app/internal/model"
	"github.com/HunterLewis000/newspaper-app/internal/statusutil"
	syncpkg "github.com/HunterLewis000/newspaper-app/internal/sync"
)

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.setNotice("load failed: "+msg.err.Error(), true)
		} else {
			m.setNotice("", false)
		}
		m.clampCursor()
		return m, nil

	case appliedMsg:
		return m, m.afterBroadcast(msg)

	case busClosedMsg:
		m.setNotice("broadcast channel closed; edits from other desks will not appear (r to reload)", true)
		return m, nil

	case opDoneMsg:
		return m, m.afterOp(msg)

	case stagesMsg:
		if m.modal == modalStatus && msg.articleID == m.status.articleID {
			m.status.loading = false
			if msg.err != nil {
				// Shown in place of the timeline; the modal itself survives.
				m.status.errText = "failed to load status history: " + msg.err.Error()
			} else {
				m.status.errText = ""
				m.status.stages = msg.stages
			}
		}
		return m, nil

	case changeOutcomeMsg:
		return m, m.afterStatusChange(msg)

	case filesMsg:
		if (m.modal == modalFiles || m.modal == modalUpload) && msg.articleID == m.files.articleID {
			m.files.loading = false
			if msg.err != nil {
				m.files.errText = "failed to load files: " + msg.err.Error()
			} else {
				m.files.errText = ""
				m.files.files = msg.files
				if m.files.cursor >= len(msg.files) {
					m.files.cursor = len(msg.files) - 1
				}
				if m.files.cursor < 0 {
					m.files.cursor = 0
				}
			}
		}
		return m, nil

	case archivedMsg:
		if m.modal == modalArchive {
			m.archive.loading = false
			if msg.err != nil {
				m.archive.errText = "failed to load completed articles: " + msg.err.Error()
			} else {
				m.archive.errText = ""
				m.archive.articles = msg.articles
				if m.archive.cursor >= len(msg.articles) {
					m.archive.cursor = len(msg.articles) - 1
				}
				if m.archive.cursor < 0 {
					m.archive.cursor = 0
				}
			}
		}
		return m, nil

	case createdMsg:
		if msg.err != nil {
			m.setNotice("create failed: "+msg.err.Error(), true)
			return m, nil
		}
		// The article_added broadcast will also land here; Upsert is
		// idempotent so applying both is harmless.
		m.store.Upsert(msg.article)
		m.modal = modalNone
		m.setNotice(fmt.Sprintf("added %q", msg.article.Title), false)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.modal == modalUpload {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

// afterBroadcast re-arms the subscription and refreshes any open panel the
// event touches.
func (m *appModel) afterBroadcast(msg appliedMsg) tea.Cmd {
	cmds := []tea.Cmd{m.waitEvent()}
	m.clampCursor()

	if msg.err != nil {
		m.setNotice("broadcast apply failed: "+msg.err.Error(), true)
		return tea.Batch(cmds...)
	}

	env := msg.env
	// An open timeline refreshes in place when its article's status moves.
	if m.modal == modalStatus && env.Event == bus.EventStatusUpdated && env.ID == m.status.articleID {
		cmds = append(cmds, m.loadStagesCmd(env.ID))
	}
	// An open file panel re-fetches on file events for its article.
	if (m.modal == modalFiles) &&
		(env.Event == bus.EventFileUploaded || env.Event == bus.EventFileDeleted) &&
		env.ArticleID == m.files.articleID {
		cmds = append(cmds, m.loadFilesCmd(m.files.articleID))
	}
	// The open modal's article can disappear underneath it.
	if env.Event == bus.EventArticleDeleted || env.Event == bus.EventArticleArchived {
		if m.modal == modalStatus && env.ID == m.status.articleID {
			m.modal = modalNone
			m.setNotice("article was removed on another desk", false)
		}
		if (m.modal == modalFiles || m.modal == modalUpload) && env.ID == m.files.articleID {
			m.modal = modalNone
			m.setNotice("article was removed on another desk", false)
		}
	}
	return tea.Batch(cmds...)
}

func (m *appModel) afterOp(msg opDoneMsg) tea.Cmd {
	m.clampCursor()
	if msg.err != nil {
		// Always surfaced, never swallowed; state is wherever the failed
		// operation's rollback policy left it.
		m.setNotice(msg.op+" failed: "+msg.err.Error(), true)
		return nil
	}
	m.setNotice("", false)
	switch msg.op {
	case "save edit":
		m.edit = nil
	case "upload":
		m.modal = modalFiles
		m.files.loading = true
		return m.loadFilesCmd(m.files.articleID)
	case "activate":
		if m.modal == modalArchive {
			m.archive.loading = true
			return m.loadArchivedCmd()
		}
	}
	return nil
}

func (m *appModel) afterStatusChange(msg changeOutcomeMsg) tea.Cmd {
	if m.modal != modalStatus || msg.articleID != m.status.articleID {
		return nil
	}
	if msg.err != nil {
		m.setNotice("status update failed: "+msg.err.Error(), true)
		return nil
	}
	if msg.out.Declined {
		// The guard re-checks fresh history; a concurrent move can turn an
		// innocent click into a regression after the confirm was skipped.
		m.setNotice("status changed on another desk; review the timeline and retry", true)
		return m.loadStagesCmd(msg.articleID)
	}
	m.setNotice("", false)
	if changed := syncpkg.DiffStages(m.status.stages, msg.out.Stages); len(changed) > 0 {
		m.status.stages = msg.out.Stages
	}
	return nil
}

func (m *appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.edit != nil {
		return m.handleEditKey(msg)
	}
	switch m.modal {
	case modalStatus:
		return m.handleStatusKey(msg)
	case modalFiles:
		return m.handleFilesKey(msg)
	case modalUpload:
		return m.handleUploadKey(msg)
	case modalConfirm:
		return m.handleConfirmKey(msg)
	case modalAdd:
		return m.handleAddKey(msg)
	case modalArchive:
		return m.handleArchiveKey(msg)
	}
	return m.handleListKey(msg)
}

func (m *appModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < m.store.Len()-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.MoveUp), key.Matches(msg, keys.MoveDown):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		delta := 1
		if key.Matches(msg, keys.MoveUp) {
			delta = -1
		}
		target := m.cursor + delta
		if target >= 0 && target < m.store.Len() {
			m.cursor = target
		}
		id := row.Article.ID
		return m, m.opCmd("reorder", func(ctx context.Context) error {
			return m.orders.MoveRow(ctx, id, delta)
		})

	case key.Matches(msg, keys.Refresh):
		return m, m.loadCmd()

	case key.Matches(msg, keys.Edit):
		row, ok := m.selectedRow()
		if !ok || statusutil.IsPublished(row.Article.Status) {
			return m, nil
		}
		m.openEdit(row)

	case key.Matches(msg, keys.Add):
		m.openAdd()

	case key.Matches(msg, keys.Delete):
		row, ok := m.selectedRow()
		if !ok || statusutil.IsPublished(row.Article.Status) {
			// Published rows offer exactly one action: Mark Complete.
			return m, nil
		}
		id := row.Article.ID
		m.confirm = confirmModal{
			title: "Delete article",
			body:  fmt.Sprintf("Delete %q for good? This cannot be undone.", row.Article.Title),
			back:  modalNone,
			action: m.opCmd("delete", func(ctx context.Context) error {
				return m.recon.Delete(ctx, id)
			}),
		}
		m.modal = modalConfirm

	case key.Matches(msg, keys.Complete):
		row, ok := m.selectedRow()
		if !ok || !statusutil.IsPublished(row.Article.Status) {
			return m, nil
		}
		id := row.Article.ID
		return m, m.opCmd("mark complete", func(ctx context.Context) error {
			return m.recon.Archive(ctx, id)
		})

	case key.Matches(msg, keys.Color):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		id := row.Article.ID
		return m, m.opCmd("color toggle", func(ctx context.Context) error {
			return m.recon.CycleColor(ctx, id)
		})

	case key.Matches(msg, keys.Cat):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		id, next := row.Article.ID, nextCategory(row.Article.Cat)
		return m, m.opCmd("category", func(ctx context.Context) error {
			return m.recon.SetCategory(ctx, id, next)
		})

	case key.Matches(msg, keys.Editor):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		id, next := row.Article.ID, nextEditor(row.Article.Editor)
		return m, m.opCmd("editor", func(ctx context.Context) error {
			return m.recon.SetEditor(ctx, id, next)
		})

	case key.Matches(msg, keys.Status):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		m.modal = modalStatus
		m.status = statusModal{articleID: row.Article.ID, loading: true}
		return m, m.loadStagesCmd(row.Article.ID)

	case key.Matches(msg, keys.Files):
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		m.modal = modalFiles
		m.files = filesModal{articleID: row.Article.ID, loading: true}
		return m, m.loadFilesCmd(row.Article.ID)

	case key.Matches(msg, keys.Archived):
		m.modal = modalArchive
		m.archive = archiveModal{loading: true}
		return m, m.loadArchivedCmd()
	}
	return m, nil
}

func (m *appModel) handleArchiveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Quit):
		m.modal = modalNone
		m.archive = archiveModal{}

	case key.Matches(msg, keys.Up):
		if m.archive.cursor > 0 {
			m.archive.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.archive.cursor < len(m.archive.articles)-1 {
			m.archive.cursor++
		}

	case key.Matches(msg, keys.Confirm):
		if m.archive.cursor >= len(m.archive.articles) {
			return m, nil
		}
		id := m.archive.articles[m.archive.cursor].ID
		// The article_activated broadcast re-adds the row to every desk,
		// ours included; we only refresh the archived list here.
		return m, m.opCmd("activate", func(ctx context.Context) error {
			return m.client.Activate(ctx, id)
		})
	}
	return m, nil
}

func (m *appModel) handleStatusKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Quit):
		m.modal = modalNone
		m.status = statusModal{}

	case key.Matches(msg, keys.Up):
		if m.status.cursor > 0 {
			m.status.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.status.cursor < len(statusutil.Stages)-1 {
			m.status.cursor++
		}

	case key.Matches(msg, keys.Confirm):
		if m.status.loading || m.status.errText != "" {
			return m, nil
		}
		id := m.status.articleID
		next := statusutil.Stages[m.status.cursor]
		if m.regressionFromDisplay(next) {
			cur := m.displayedCurrent()
			m.confirm = confirmModal{
				title:  "Revert status",
				body:   fmt.Sprintf("Move %q back to %q?", cur, next),
				back:   modalStatus,
				action: m.changeStatusCmd(id, next, true),
			}
			m.modal = modalConfirm
			return m, nil
		}
		return m, m.changeStatusCmd(id, next, false)
	}
	return m, nil
}

// regressionFromDisplay mirrors the engine's strict bound against the stages
// currently on screen, deciding whether to raise the confirm dialog before
// the command runs (the engine re-checks against fresh history either way).
func (m *appModel) regressionFromDisplay(next model.Status) bool {
	curIdx := -1
	for i, st := range m.status.stages {
		if st.Current {
			curIdx = i
		}
	}
	return curIdx > statusutil.StageIndex(next)
}

func (m *appModel) displayedCurrent() model.Status {
	for _, st := range m.status.stages {
		if st.Current {
			return st.Status
		}
	}
	return ""
}

func (m *appModel) handleFilesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Quit):
		m.modal = modalNone
		m.files = filesModal{}

	case key.Matches(msg, keys.Up):
		if m.files.cursor > 0 {
			m.files.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.files.cursor < len(m.files.files)-1 {
			m.files.cursor++
		}

	case msg.String() == "u":
		fp := filepicker.New()
		if home, err := os.UserHomeDir(); err == nil {
			fp.CurrentDirectory = home
		}
		fp.Height = pickerHeight(m.height)
		m.picker = fp
		m.modal = modalUpload
		return m, m.picker.Init()

	case key.Matches(msg, keys.Delete):
		if m.files.cursor >= len(m.files.files) {
			return m, nil
		}
		f := m.files.files[m.files.cursor]
		m.confirm = confirmModal{
			title: "Delete file",
			body:  fmt.Sprintf("Delete %q?", f.Filename),
			back:  modalFiles,
			action: m.opCmd("delete file", func(ctx context.Context) error {
				return m.client.DeleteFile(ctx, f.ID)
			}),
		}
		m.modal = modalConfirm
	}
	return m, nil
}

func (m *appModel) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Cancel) {
		m.modal = modalFiles
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		return m, m.uploadCmd(m.files.articleID, path)
	}
	return m, cmd
}

func (m *appModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		m.modal = m.confirm.back
		m.confirm = confirmModal{}

	case msg.String() == "tab", key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		m.confirm.focus = 1 - m.confirm.focus

	case key.Matches(msg, keys.Confirm):
		action := m.confirm.action
		back := m.confirm.back
		declined := m.confirm.focus == 1
		m.modal = back
		m.confirm = confirmModal{}
		if declined {
			// Declining leaves everything untouched: no request is sent.
			return m, nil
		}
		return m, action
	}
	return m, nil
}

func (m *appModel) openEdit(row syncpkg.Row) {
	m.store.BeginEdit(row.Article.ID)
	r, _ := m.store.Get(row.Article.ID)

	var inputs [3]textinput.Model
	values := []string{r.Draft.Title, r.Draft.Author, r.Draft.Deadline}
	prompts := []string{"Title: ", "Author: ", "Deadline: "}
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = prompts[i]
		ti.SetValue(values[i])
		ti.CharLimit = 200
		inputs[i] = ti
	}
	inputs[0].Focus()
	m.edit = &rowEdit{articleID: row.Article.ID, inputs: inputs}
}

func (m *appModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := m.edit
	switch {
	case key.Matches(msg, keys.Cancel):
		m.store.EndEdit(e.articleID)
		m.edit = nil
		return m, nil

	case msg.String() == "tab", msg.String() == "shift+tab":
		e.inputs[e.focus].Blur()
		if msg.String() == "tab" {
			e.focus = (e.focus + 1) % len(e.inputs)
		} else {
			e.focus = (e.focus + len(e.inputs) - 1) % len(e.inputs)
		}
		e.inputs[e.focus].Focus()
		return m, nil

	case key.Matches(msg, keys.Confirm):
		draft := syncpkg.Draft{
			Title:    e.inputs[0].Value(),
			Author:   e.inputs[1].Value(),
			Deadline: e.inputs[2].Value(),
		}
		id := e.articleID
		m.store.SetDraft(id, draft)
		// On failure the store still shows the pre-edit values and the
		// inputs stay open for a manual retry.
		return m, m.opCmd("save edit", func(ctx context.Context) error {
			return m.recon.ApplyLocalEdit(ctx, id, draft)
		})
	}

	var cmd tea.Cmd
	e.inputs[e.focus], cmd = e.inputs[e.focus].Update(msg)
	m.store.SetDraft(e.articleID, syncpkg.Draft{
		Title:    e.inputs[0].Value(),
		Author:   e.inputs[1].Value(),
		Deadline: e.inputs[2].Value(),
	})
	return m, cmd
}

func (m *appModel) openAdd() {
	var inputs [3]textinput.Model
	prompts := []string{"Title: ", "Author: ", "Deadline (YYYY-MM-DD): "}
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = prompts[i]
		ti.CharLimit = 200
		inputs[i] = ti
	}
	inputs[0].Focus()
	m.add = addForm{inputs: inputs}
	m.modal = modalAdd
}

func (m *appModel) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := &m.add
	switch {
	case key.Matches(msg, keys.Cancel):
		m.modal = modalNone
		return m, nil

	case msg.String() == "tab", msg.String() == "shift+tab":
		a.inputs[a.focus].Blur()
		if msg.String() == "tab" {
			a.focus = (a.focus + 1) % len(a.inputs)
		} else {
			a.focus = (a.focus + len(a.inputs) - 1) % len(a.inputs)
		}
		a.inputs[a.focus].Focus()
		return m, nil

	case key.Matches(msg, keys.Confirm):
		return m, m.createCmd(a.inputs[0].Value(), a.inputs[1].Value(), a.inputs[2].Value())
	}

	var cmd tea.Cmd
	a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
	return m, cmd
}

func nextCategory(c model.Category) model.Category {
	for i, cat := range model.Categories {
		if cat == c {
			return model.Categories[(i+1)%len(model.Categories)]
		}
	}
	return model.Categories[0]
}

func nextEditor(e model.Editor) model.Editor {
	for i, ed := range model.Editors {
		if ed == e {
			return model.Editors[(i+1)%len(model.Editors)]
		}
	}
	return model.Editors[0]
}

func pickerHeight(screenH int) int {
	// Leave room for the modal title, borders, and help line.
	h := screenH - 16
	if h < 8 {
		h = 8
	}
	if h > 18 {
		h = 18
	}
	return h
}

func uploadFromPath(ctx context.Context, client *api.Client, articleID int64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = client.UploadFile(ctx, articleID, filepath.Base(path), f)
	return err
}
