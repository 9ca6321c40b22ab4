package viewer

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/mesh-ripper/common"
	"github.com/Carmen-Shannon/mesh-ripper/engine/settings"
	"github.com/Carmen-Shannon/mesh-ripper/engine/timeline"
	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoDataset is returned when saving or loading config without an active data source.
var ErrNoDataset = errors.New("no active dataset")

func (v *viewerImpl) SaveConfig() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.saveConfig()
}

func (v *viewerImpl) LoadConfig() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loadConfig()
}

// configDir is the directory holding the active dataset: the selected subdirectory, or the
// fixed prefix of the glob pattern.
func (v *viewerImpl) configDir() string {
	var patternDir string
	if p := v.resolver.Source().Pattern; p != "" {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(p))
		patternDir = filepath.FromSlash(base)
	}
	return common.Coalesce(v.resolver.Dir(), patternDir)
}

func (v *viewerImpl) saveConfig() error {
	dir := v.configDir()
	if dir == "" {
		return ErrNoDataset
	}
	if err := settings.Save(filepath.Join(dir, settings.ConfigFileName), v.actions); err != nil {
		return err
	}
	if err := settings.Save(filepath.Join(dir, settings.CameraConfigFileName), v.cameras); err != nil {
		return err
	}
	v.logger.Info("viewer: config saved", "dir", dir)
	return nil
}

// loadConfig reads both files; each is applied independently so a corrupt camera file does
// not discard valid settings.
func (v *viewerImpl) loadConfig() error {
	dir := v.configDir()
	if dir == "" {
		return ErrNoDataset
	}

	var errs []error
	actions := v.actions
	if err := settings.Load(filepath.Join(dir, settings.ConfigFileName), &actions); err != nil {
		errs = append(errs, err)
	} else {
		actions.KeepSession(v.actions)
		v.actions = actions
		v.restoreFrame(actions.CurrentFrame)
	}

	var cameras timeline.CameraSystem
	if err := settings.Load(filepath.Join(dir, settings.CameraConfigFileName), &cameras); err != nil {
		errs = append(errs, err)
	} else {
		cameras.RecordMode = v.cameras.RecordMode
		cameras.FollowCamera = v.cameras.FollowCamera
		*v.cameras = cameras
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config in %s: %w", dir, err)
	}
	v.logger.Info("viewer: config loaded", "dir", dir)
	return nil
}

// restoreFrame moves playback to the loaded frame with the given index in the backing list, if any.
func (v *viewerImpl) restoreFrame(frame int) {
	mgr := v.resolver.Manager()
	for i, e := range mgr.Loaded() {
		if idx, ok := mgr.IndexOf(e.Key); ok && idx == frame {
			v.pool.SetCurrentIndex(i)
			v.shownKey = ""
			return
		}
	}
}
