package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/HunterLewis000/newspaper-app/internal/model"
	"github.com/HunterLewis000/newspaper-app/internal/statusutil"
	syncpkg "github.com/HunterLewis000/newspaper-app/internal/sync"
)

func (m *appModel) View() string {
	switch m.modal {
	case modalStatus:
		return m.overlay(m.viewStatusModal())
	case modalFiles:
		return m.overlay(m.viewFilesModal())
	case modalUpload:
		return m.overlay(m.viewUploadModal())
	case modalConfirm:
		return m.overlay(m.viewConfirmModal())
	case modalAdd:
		return m.overlay(m.viewAddModal())
	case modalArchive:
		return m.overlay(m.viewArchiveModal())
	}
	return m.viewList()
}

func (m *appModel) overlay(box string) string {
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *appModel) viewList() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("The Newspaper — article desk"))
	b.WriteString(styleMuted.Render("  (" + m.cfg.UserName + ")"))
	b.WriteString("\n\n")

	b.WriteString(styleHeader.Render(fmt.Sprintf(
		"  %-3s %-30s %-16s %-13s %-8s %-12s %-3s  %s",
		"Cat", "Title", "Author", "Status", "Editor", "Deadline", "📎", "Actions")))
	b.WriteString("\n")

	rows := m.store.Snapshot()
	if len(rows) == 0 {
		b.WriteString(styleMuted.Render("  no articles yet — press a to add one"))
		b.WriteString("\n")
	}
	for i, row := range rows {
		b.WriteString(m.renderRow(i, row))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.notice != "" {
		if m.noticeErr {
			b.WriteString(styleError.Render(m.notice))
		} else {
			b.WriteString(styleMuted.Render(m.notice))
		}
		b.WriteString("\n")
	}
	b.WriteString(styleMuted.Render(
		"↑/↓ select · J/K reorder · e edit · a add · s status · c color · g cat · v editor · o files · d delete · m complete · A completed · r refresh · q quit"))
	return b.String()
}

func (m *appModel) renderRow(i int, row syncpkg.Row) string {
	a := row.Article

	if m.edit != nil && m.edit.articleID == a.ID {
		return m.renderEditRow(i)
	}

	title := row.Draft.Title
	author := row.Draft.Author
	deadline := row.Draft.Deadline
	if !row.Editing {
		title, author, deadline = a.Title, a.Author, a.Deadline
	}

	published := statusutil.IsPublished(a.Status)
	actions := "Edit · Delete"
	if published {
		actions = "Mark Complete"
	}

	line := fmt.Sprintf("%s %-3s %-30s %-16s %-13s %-8s %-12s %-3d  %s",
		colorDot(string(a.StatusColor)),
		a.Cat,
		truncate(title, 30),
		truncate(author, 16),
		a.Status,
		editorLabel(a.Editor),
		deadline,
		a.FileCount,
		actions)

	cursor := "  "
	if i == m.cursor {
		cursor = "> "
	}

	switch {
	case i == m.cursor:
		return styleSelected.Render(cursor + line)
	case published:
		return cursor + stylePublishedRow.Render(line)
	default:
		return cursor + line
	}
}

func (m *appModel) renderEditRow(i int) string {
	e := m.edit
	cursor := "  "
	if i == m.cursor {
		cursor = "> "
	}
	fields := make([]string, len(e.inputs))
	for j, in := range e.inputs {
		fields[j] = in.View()
	}
	return cursor + styleEditing.Render("✎ ") +
		strings.Join(fields, "  ") +
		styleMuted.Render("   tab next · enter save · esc cancel")
}

func (m *appModel) viewStatusModal() string {
	s := m.status
	var b strings.Builder
	b.WriteString(styleTitle.Render("Status timeline"))
	b.WriteString("\n\n")

	switch {
	case s.loading:
		b.WriteString(styleMuted.Render("loading history…"))
	case s.errText != "":
		b.WriteString(styleError.Render(s.errText))
	default:
		for i, st := range s.stages {
			b.WriteString(m.renderStage(i, st))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styleMuted.Render("↑/↓ pick stage · enter set · esc close"))
	return styleModalBox.Render(b.String())
}

// stageMarker picks the glyph and style for one timeline stage. A skipped
// stage was jumped over, not left undone, so it renders exactly like a
// completed one; the published tint covers every lit stage, not just the
// current one.
func stageMarker(st statusutil.StageState) (string, lipgloss.Style) {
	switch {
	case st.Current:
		if st.PublishedTint {
			return "◉", styleStagePublish
		}
		return "◉", styleStageCurrent
	case st.Completed, st.Skipped:
		if st.PublishedTint {
			return "●", styleStagePublish
		}
		return "●", styleStageDone
	default:
		return "○", styleMuted
	}
}

func (m *appModel) renderStage(i int, st statusutil.StageState) string {
	glyph, style := stageMarker(st)

	cursor := "  "
	if i == m.status.cursor {
		cursor = "> "
	}

	line := fmt.Sprintf("%s%s %-13s", cursor, glyph, st.Status)
	if st.Entry != nil {
		line += styleMuted.Render(fmt.Sprintf("  %s · by %s",
			statusutil.FormatTimestamp(st.Entry.Timestamp), st.Entry.UserName))
	}
	return style.Render(line)
}

func (m *appModel) viewFilesModal() string {
	f := m.files
	var b strings.Builder
	b.WriteString(styleTitle.Render("Files"))
	b.WriteString("\n\n")

	switch {
	case f.loading:
		b.WriteString(styleMuted.Render("loading…"))
	case f.errText != "":
		b.WriteString(styleError.Render(f.errText))
	case len(f.files) == 0:
		b.WriteString(styleMuted.Render("no files attached"))
	default:
		for i, file := range f.files {
			cursor := "  "
			if i == f.cursor {
				cursor = "> "
			}
			b.WriteString(cursor + file.Filename)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styleMuted.Render("u upload · d delete · esc close"))
	return styleModalBox.Render(b.String())
}

func (m *appModel) viewUploadModal() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Upload file"))
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n")
	b.WriteString(styleMuted.Render("enter select · esc back"))
	return styleModalBox.Render(b.String())
}

func (m *appModel) viewConfirmModal() string {
	c := m.confirm
	yes, no := styleBtn.Render("Confirm"), styleBtnActive.Render("Cancel")
	if c.focus == 0 {
		yes, no = styleBtnActive.Render("Confirm"), styleBtn.Render("Cancel")
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render(c.title))
	b.WriteString("\n\n")
	b.WriteString(c.body)
	b.WriteString("\n\n")
	b.WriteString(yes + "  " + no)
	b.WriteString("\n\n")
	b.WriteString(styleMuted.Render("tab switch · enter choose · esc cancel"))
	return styleModalBox.Render(b.String())
}

func (m *appModel) viewArchiveModal() string {
	ar := m.archive
	var b strings.Builder
	b.WriteString(styleTitle.Render("Completed articles"))
	b.WriteString("\n\n")

	switch {
	case ar.loading:
		b.WriteString(styleMuted.Render("loading…"))
	case ar.errText != "":
		b.WriteString(styleError.Render(ar.errText))
	case len(ar.articles) == 0:
		b.WriteString(styleMuted.Render("nothing completed yet"))
	default:
		for i, a := range ar.articles {
			cursor := "  "
			if i == ar.cursor {
				cursor = "> "
			}
			b.WriteString(fmt.Sprintf("%s%-30s %-16s %s",
				cursor, truncate(a.Title, 30), truncate(a.Author, 16),
				styleMuted.Render(string(a.Cat))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styleMuted.Render("enter set active · esc close"))
	return styleModalBox.Render(b.String())
}

func (m *appModel) viewAddModal() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Add article"))
	b.WriteString("\n\n")
	for i := range m.add.inputs {
		b.WriteString(m.add.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styleMuted.Render("tab next · enter create · esc cancel"))
	return styleModalBox.Render(b.String())
}

func editorLabel(e model.Editor) string {
	if e == model.EditorNone {
		return "—"
	}
	return string(e)
}

// truncate shortens s to n display cells worth of runes. Byte slicing would
// split multibyte titles mid-rune.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
