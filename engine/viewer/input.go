package viewer

import (
	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/Carmen-Shannon/mesh-ripper/engine/playback"
)

// speedStep scales the frame period for the faster/slower bindings.
const speedStep = 1.25

// minAdvanceEvery bounds how fast playback can be made to run, in seconds per frame.
const minAdvanceEvery = 1.0 / 120

func (v *viewerImpl) PushKey(ev common.KeyEvent) {
	v.inputMu.Lock()
	defer v.inputMu.Unlock()
	v.input = append(v.input, ev)
}

// handleInput drains the queue filled by PushKey. Caller holds mu.
func (v *viewerImpl) handleInput() {
	v.inputMu.Lock()
	events := v.input
	v.input = nil
	v.inputMu.Unlock()

	for _, ev := range events {
		v.handleKey(ev)
	}
}

// handleKey applies one key event. Held movement keys go to the camera controller; everything
// else acts on press only.
func (v *viewerImpl) handleKey(ev common.KeyEvent) {
	v.ctrl.HandleKey(ev)
	if !ev.Pressed {
		return
	}

	ctrl := ev.Mods.Has(common.ModControl)
	if ctrl {
		v.handleChord(ev)
		return
	}
	if ev.Mods != 0 {
		return
	}

	switch ev.Key {
	case common.KeyT:
		v.actions.FrameDirection = playback.Forward
	case common.KeyB:
		v.actions.FrameDirection = playback.Back
	case common.KeyX:
		if !ev.Repeat {
			v.actions.Paused = !v.actions.Paused
		}
	case common.KeyRight, common.KeyLeft:
		if v.actions.Paused {
			dir := playback.Forward
			if ev.Key == common.KeyLeft {
				dir = playback.Back
			}
			v.pool.Step(dir)
			v.shownKey = ""
		}
	case common.KeyR:
		v.actions.Reset = true
		v.shownKey = ""
	case common.KeyF:
		v.actions.AdvanceEvery = max(v.actions.AdvanceEvery/speedStep, minAdvanceEvery)
	case common.KeyG:
		v.actions.AdvanceEvery *= speedStep
	case common.KeyK:
		if !v.cameras.Capture(v.actions.CurrentFrame, v.cam.Pose()) {
			v.logger.Info("viewer: keyframe not captured, enable record mode with Ctrl+K")
		}
	case common.KeyN:
		if name, ok := v.cameras.AddTimeline(""); ok {
			v.cameras.Select(name)
			v.logger.Info("viewer: timeline created", "name", name)
		}
	case common.KeyTab:
		v.logger.Info("viewer: timeline selected", "name", v.cameras.CycleTimeline())
	case common.KeyPageUp:
		v.actions.WantedLOD = min(v.actions.WantedLOD+1, max(len(v.actions.LODs)-1, 0))
	case common.KeyPageDown:
		v.actions.WantedLOD = max(v.actions.WantedLOD-1, v.resolver.Manager().Level())
	case common.KeyLeftBracket, common.KeyRightBracket:
		v.cycleDataset(ev.Key == common.KeyRightBracket)
	}
}

// handleChord applies Ctrl bindings.
func (v *viewerImpl) handleChord(ev common.KeyEvent) {
	if ev.Repeat {
		return
	}
	switch ev.Key {
	case common.KeyR:
		v.actions.Reload = true
	case common.KeyF:
		v.actions.FocusOnMesh = true
	case common.KeyC:
		v.cameras.FollowCamera = !v.cameras.FollowCamera
	case common.KeyK:
		v.cameras.RecordMode = !v.cameras.RecordMode
	case common.KeyV:
		v.cameras.ShowVisualization = !v.cameras.ShowVisualization
	case common.KeyS:
		if err := v.saveConfig(); err != nil {
			v.logger.Error("viewer: save config failed", "err", err)
		}
	case common.KeyL:
		if err := v.loadConfig(); err != nil {
			v.logger.Warn("viewer: load config failed, keeping current settings", "err", err)
		}
	}
}

// cycleDataset selects the next or previous dataset directory, wrapping around.
func (v *viewerImpl) cycleDataset(forward bool) {
	n := len(v.actions.Datasets)
	if n == 0 {
		return
	}
	i := 0
	for j, d := range v.actions.Datasets {
		if d == v.actions.Dataset {
			i = j
			break
		}
	}
	if forward {
		i = (i + 1) % n
	} else {
		i = (i + n - 1) % n
	}
	v.actions.Dataset = v.actions.Datasets[i]
	v.logger.Info("viewer: dataset selected", "dataset", v.actions.Dataset)
}
