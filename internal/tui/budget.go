package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/elishgi/moneyPlusMinus/internal/client"
	"github.com/elishgi/moneyPlusMinus/internal/core"
	"github.com/elishgi/moneyPlusMinus/internal/form"
)

type rowKind int

const (
	rowMonth rowKind = iota
	rowItem
	rowDetail
)

// budgetRow addresses one selectable line on the budget screen.
type budgetRow struct {
	kind     rowKind
	section  form.Section
	itemID   string
	detailID string
}

type editField int

const (
	editAmount editField = iota
	editLabel
)

// budgetState is the budget screen: the form store plus cursor and
// inline edit state.
type budgetState struct {
	store  *form.Store
	rows   []budgetRow
	cursor int

	editing bool
	field   editField
	input   textinput.Model

	lastSnapshotID string
}

var sectionTitles = map[form.Section]string{
	form.Incomes:        "Incomes",
	form.Expenses:       "Fixed expenses",
	form.PreviousCredit: "Previous credit",
}

var sectionOrder = []form.Section{form.Incomes, form.Expenses, form.PreviousCredit}

func newBudgetState() budgetState {
	return budgetState{store: form.NewStore()}
}

// rebuildRows flattens the form into the navigable row list. Detail
// rows appear under their parent only while the parent is expanded.
func (bs *budgetState) rebuildRows() {
	rows := []budgetRow{{kind: rowMonth}}
	for _, section := range sectionOrder {
		for _, item := range bs.store.Items(section) {
			rows = append(rows, budgetRow{kind: rowItem, section: section, itemID: item.ID})
			if item.ShowDetails {
				for _, d := range item.Details {
					rows = append(rows, budgetRow{
						kind: rowDetail, section: section, itemID: item.ID, detailID: d.ID,
					})
				}
			}
		}
	}
	bs.rows = rows
	if bs.cursor >= len(rows) {
		bs.cursor = len(rows) - 1
	}
	if bs.cursor < 0 {
		bs.cursor = 0
	}
}

func (bs *budgetState) currentRow() budgetRow {
	if len(bs.rows) == 0 {
		return budgetRow{kind: rowMonth}
	}
	return bs.rows[bs.cursor]
}

// itemAt resolves a row back to its current line item.
func (bs *budgetState) itemAt(row budgetRow) (core.LineItem, bool) {
	for _, item := range bs.store.Items(row.section) {
		if item.ID == row.itemID {
			return item, true
		}
	}
	return core.LineItem{}, false
}

func (bs *budgetState) detailAt(row budgetRow) (core.DetailItem, bool) {
	item, ok := bs.itemAt(row)
	if !ok {
		return core.DetailItem{}, false
	}
	for _, d := range item.Details {
		if d.ID == row.detailID {
			return d, true
		}
	}
	return core.DetailItem{}, false
}

func (a *App) updateBudget(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if a.budget.editing {
			var cmd tea.Cmd
			a.budget.input, cmd = a.budget.input.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	if a.budget.editing {
		return a.updateBudgetEdit(keyMsg)
	}

	bs := &a.budget
	switch keyMsg.String() {
	case "up", "k":
		if bs.cursor > 0 {
			bs.cursor--
		}
	case "down", "j":
		if bs.cursor < len(bs.rows)-1 {
			bs.cursor++
		}
	case "enter", "e":
		return a.startEdit(editAmount)
	case "r":
		if bs.currentRow().kind != rowMonth {
			return a.startEdit(editLabel)
		}
	case "a":
		row := bs.currentRow()
		section := row.section
		if row.kind == rowMonth {
			section = form.Incomes
		}
		bs.store.AddItem(section)
		bs.rebuildRows()
		a.budgetChanged()
	case "d":
		row := bs.currentRow()
		if row.kind == rowItem {
			bs.store.AddDetail(row.section, row.itemID)
			bs.rebuildRows()
			a.budgetChanged()
		}
	case "t", " ":
		row := bs.currentRow()
		if row.kind == rowItem {
			bs.store.ToggleDetails(row.section, row.itemID)
			bs.rebuildRows()
			a.budgetChanged()
		}
	case "x":
		row := bs.currentRow()
		switch row.kind {
		case rowItem:
			bs.store.RemoveItem(row.section, row.itemID)
		case rowDetail:
			bs.store.RemoveDetail(row.section, row.itemID, row.detailID)
		default:
			return a, nil
		}
		bs.rebuildRows()
		a.budgetChanged()
	case "c":
		store := bs.store
		return a, snapshotCmd(a.api, store.MonthLabel(),
			store.TotalIncome(), store.TotalExpense(), store.Remaining())
	case "w":
		return a.enterWizard(true)
	case "R":
		bs.store.Reset()
		bs.rebuildRows()
		a.budgetChanged()
	case "q", "esc":
		return a.quit()
	}
	return a, nil
}

// startEdit opens the inline input prefilled with the current value.
func (a *App) startEdit(field editField) (tea.Model, tea.Cmd) {
	bs := &a.budget
	row := bs.currentRow()

	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 24

	switch row.kind {
	case rowMonth:
		ti.Placeholder = "March 2025"
		ti.SetValue(bs.store.MonthLabel())
	case rowItem:
		item, ok := bs.itemAt(row)
		if !ok {
			return a, nil
		}
		if field == editAmount {
			// Detail sums own the parent amount; edit the rows instead.
			if len(item.Details) > 0 {
				return a, nil
			}
			ti.SetValue(item.Amount)
		} else {
			ti.SetValue(item.Label)
		}
	case rowDetail:
		d, ok := bs.detailAt(row)
		if !ok {
			return a, nil
		}
		if field == editAmount {
			ti.SetValue(d.Amount)
		} else {
			ti.SetValue(d.Label)
		}
	}

	ti.Focus()
	ti.CursorEnd()
	bs.editing = true
	bs.field = field
	bs.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a *App) updateBudgetEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	bs := &a.budget

	switch msg.String() {
	case "enter":
		a.commitEdit()
		bs.editing = false
		return a, nil
	case "esc":
		bs.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	bs.input, cmd = bs.input.Update(msg)
	record := a.recordKey(msg.String(), bs.input.Value(), a.editFieldName())
	return a, tea.Batch(cmd, record)
}

func (a *App) commitEdit() {
	bs := &a.budget
	row := bs.currentRow()
	value := strings.TrimSpace(bs.input.Value())

	switch row.kind {
	case rowMonth:
		bs.store.SetMonthLabel(value)
	case rowItem:
		patch := form.Patch{}
		if bs.field == editAmount {
			patch.Amount = &value
		} else {
			patch.Label = &value
		}
		bs.store.UpdateItem(row.section, row.itemID, patch)
	case rowDetail:
		patch := form.Patch{}
		if bs.field == editAmount {
			patch.Amount = &value
		} else {
			patch.Label = &value
		}
		bs.store.UpdateDetail(row.section, row.itemID, row.detailID, patch)
	}

	bs.rebuildRows()
	a.budgetChanged()
}

// editFieldName labels keystroke events by what is being typed into.
func (a *App) editFieldName() string {
	row := a.budget.currentRow()
	field := "amount"
	if a.budget.field == editLabel {
		field = "label"
	}
	switch row.kind {
	case rowMonth:
		return "monthLabel"
	case rowDetail:
		return "detail." + field
	default:
		return "item." + field
	}
}

func (a *App) viewBudget() string {
	bs := &a.budget
	var b strings.Builder

	b.WriteString(titleStyle.Render("Budget — " + bs.store.MonthLabel()))
	b.WriteString("\n")

	for i, row := range bs.rows {
		selected := i == bs.cursor
		line := a.renderRow(row, selected)
		if selected && bs.editing {
			line = a.renderRowEditing(row)
		}
		b.WriteString(line + "\n")
		if row.kind == rowMonth {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n" + a.renderSummary())
	b.WriteString("\n" + a.renderStatus())

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (a *App) renderRow(row budgetRow, selected bool) string {
	bs := &a.budget
	style := rowStyle
	if selected {
		style = selectedStyle
	}

	switch row.kind {
	case rowMonth:
		return style.Render("Month: " + bs.store.MonthLabel())
	case rowDetail:
		d, ok := bs.detailAt(row)
		if !ok {
			return ""
		}
		label := d.Label
		if label == "" {
			label = "(unnamed)"
		}
		text := fmt.Sprintf("· %-24s %10s", label, d.Amount)
		if selected {
			return selectedStyle.Render("    " + text)
		}
		return detailRowStyle.Render(text)
	}

	item, ok := bs.itemAt(row)
	if !ok {
		return ""
	}

	marker := "  "
	if len(item.Details) > 0 {
		if item.ShowDetails {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}
	amount := core.FormatAmount(item.EffectiveAmount())
	text := fmt.Sprintf("%s%-26s %10s", marker, item.Label, amount)

	// Section header printed before each section's first item.
	prefix := ""
	if first := a.firstItemID(row.section); first == item.ID {
		prefix = "\n" + sectionStyle.Render(sectionTitles[row.section]) + "\n"
	}
	return prefix + style.Render("  "+text)
}

func (a *App) renderRowEditing(row budgetRow) string {
	name := "amount"
	if a.budget.field == editLabel {
		name = "label"
	}
	if row.kind == rowMonth {
		name = "month"
	}
	return selectedStyle.Render("  "+name+": ") + a.budget.input.View()
}

func (a *App) firstItemID(section form.Section) string {
	items := a.budget.store.Items(section)
	if len(items) == 0 {
		return ""
	}
	return items[0].ID
}

func (a *App) renderSummary() string {
	bs := &a.budget
	income := bs.store.TotalIncome()
	expenses := bs.store.TotalExpense()
	remaining := bs.store.Remaining()

	var b strings.Builder
	b.WriteString(sectionStyle.Render("Summary") + "\n")
	b.WriteString(fmt.Sprintf("%-18s %12s\n", "Total income", amountStyle.Render(core.FormatAmount(income))))
	b.WriteString(fmt.Sprintf("%-18s %12s\n", "Total expenses", amountStyle.Render(core.FormatAmount(expenses))))
	b.WriteString(fmt.Sprintf("%-18s %12s\n", "Remaining", remainderStyle(remaining).Render(core.FormatAmount(remaining))))

	segments := core.AllocateSegments(bs.store.CombinedExpenses())
	if len(segments) > 0 {
		b.WriteString("\n" + renderSegmentBar(segments, 40) + "\n")
		for _, seg := range segments {
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(seg.Color)).Render("■")
			b.WriteString(fmt.Sprintf("%s %-24s %10s  %3d%%\n",
				swatch, seg.Label, core.FormatAmount(seg.Value), seg.Percent))
		}
	}
	if bs.lastSnapshotID != "" {
		b.WriteString("\n" + helperStyle.Render("Snapshot saved: "+bs.lastSnapshotID) + "\n")
	}
	return b.String()
}

func (a *App) renderStatus() string {
	parts := []string{
		"enter edit", "r rename", "a add", "d detail", "t toggle",
		"x delete", "c calculate", "w wizard", "R reset", "q quit",
	}
	line := hintStyle.Render(strings.Join(parts, " • "))

	switch a.saveStatus {
	case client.StatusSaving:
		line += "\n" + statusStyle.Render("Saving...")
	case client.StatusSaved:
		line += "\n" + statusStyle.Render("All changes saved")
	case client.StatusError:
		line += "\n" + errorStyle.Render(a.errText)
	}
	if a.saveStatus != client.StatusError && a.errText != "" {
		line += "\n" + errorStyle.Render(a.errText)
	}
	return line
}

// renderSegmentBar draws the expense split as one proportional bar
// using the shared palette.
func renderSegmentBar(segments []core.Segment, width int) string {
	var total float64
	for _, seg := range segments {
		total += seg.Value
	}
	if total == 0 || width <= 0 {
		return ""
	}

	var b strings.Builder
	used := 0
	for i, seg := range segments {
		cells := int(seg.Value/total*float64(width) + 0.5)
		if i == len(segments)-1 {
			cells = width - used
		}
		if cells <= 0 {
			continue
		}
		used += cells
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(seg.Color)).
			Render(strings.Repeat("█", cells)))
	}
	return b.String()
}
