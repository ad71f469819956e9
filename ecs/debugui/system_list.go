package debugui

import (
	"fmt"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/plus3/tickloop/ecs"
)

// SystemList shows the configuration list in dispatch order with the
// scheduler controls.
type SystemList struct {
	lastErr string
}

func NewSystemList() *SystemList {
	return &SystemList{}
}

// Row is one configured instance as the list displays it.
type Row struct {
	Index    int
	Name     string
	Instance string
	Resolved bool
	Options  string
}

// Rows describes every instance of w.
func Rows(w *ecs.World) []Row {
	instances := w.Instances()
	rows := make([]Row, 0, len(instances))
	for _, inst := range instances {
		var opts []string
		for _, key := range Fields(inst.Config.Attrs()) {
			if key == "name" || key == "instance" {
				continue
			}
			opts = append(opts, fmt.Sprintf("%s=%s", key, Summarize(inst.Config[key])))
		}
		rows = append(rows, Row{
			Index:    inst.Index,
			Name:     inst.Config.Name(),
			Instance: inst.Config.Instance(),
			Resolved: inst.Kind != nil,
			Options:  strings.Join(opts, " "),
		})
	}
	return rows
}

// Status is the scheduler state shown above the table.
type Status struct {
	State        string // "running", "paused" or "stopped"
	LastError    string
	RestartError string
}

func (sl *SystemList) Status(w *ecs.World) Status {
	st := Status{State: "stopped", RestartError: sl.lastErr}
	switch {
	case !w.Running():
	case w.Paused():
		st.State = "paused"
	default:
		st.State = "running"
	}
	if err := w.LastError(); err != nil {
		st.LastError = err.Error()
	}
	return st
}

// Restart restarts the scheduler, keeping any failure for display.
func (sl *SystemList) Restart(w *ecs.World) error {
	sl.lastErr = ""
	err := w.Restart()
	if err != nil {
		sl.lastErr = err.Error()
	}
	return err
}

func (sl *SystemList) Render(w *ecs.World) {
	if !imgui.BeginV("Systems", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	st := sl.Status(w)
	imgui.Text(fmt.Sprintf("Scheduler: %s", st.State))

	switch st.State {
	case "paused":
		if imgui.Button("Resume") {
			w.Resume()
		}
		imgui.SameLine()
	case "running":
		if imgui.Button("Pause") {
			w.Pause()
		}
		imgui.SameLine()
	}
	if imgui.Button("Restart") {
		_ = sl.Restart(w)
	}
	if st.LastError != "" {
		imgui.Text(fmt.Sprintf("Last error: %s", st.LastError))
	}
	if st.RestartError != "" {
		imgui.Text(fmt.Sprintf("Restart failed: %s", st.RestartError))
	}

	imgui.Separator()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if imgui.BeginTableV("SystemTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("#")
		imgui.TableSetupColumn("Kind")
		imgui.TableSetupColumn("Installed")
		imgui.TableSetupColumn("Options")
		imgui.TableHeadersRow()

		for _, row := range Rows(w) {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Index))
			imgui.TableNextColumn()
			if row.Instance != "" {
				imgui.Text(fmt.Sprintf("%s (%s)", row.Name, row.Instance))
			} else {
				imgui.Text(row.Name)
			}
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%t", row.Resolved))
			imgui.TableNextColumn()
			imgui.Text(row.Options)
		}

		imgui.EndTable()
	}

	imgui.End()
}
