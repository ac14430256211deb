package job

import "math"

// RenderSettings describes the camera resolution and sampling quality a
// render should use, independent of which screen-space rectangle is being
// rendered.
type RenderSettings struct {
	ResolutionW, ResolutionH uint32
	Samples                  uint32
	Recursion                uint32
}

// Rect is a screen-space rectangle in pixel coordinates.
type Rect struct {
	X, Y, W, H int
}

// Area returns the rectangle's pixel area.
func (r Rect) Area() int {
	return r.W * r.H
}

// RenderTask pairs a screen-space rectangle with the settings it should be
// rendered at.
type RenderTask struct {
	Rect     Rect
	Settings RenderSettings
}

// ToJob scales the task's screen-space rectangle into camera-resolution
// space (round-to-nearest) and returns the resulting canonical RenderJob.
func (t RenderTask) ToJob(screenW, screenH uint32) RenderJob {
	scaleX := float64(t.Settings.ResolutionW) / float64(screenW)
	scaleY := float64(t.Settings.ResolutionH) / float64(screenH)

	round := func(v float64) uint32 {
		return uint32(math.Round(v))
	}

	x := round(float64(t.Rect.X) * scaleX)
	y := round(float64(t.Rect.Y) * scaleY)
	w := round(float64(t.Rect.X+t.Rect.W)*scaleX) - x
	h := round(float64(t.Rect.Y+t.Rect.H)*scaleY) - y
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	return RenderJob{
		X: x, Y: y, W: w, H: h,
		CameraW: t.Settings.ResolutionW, CameraH: t.Settings.ResolutionH,
		NSamples: t.Settings.Samples, NRecursion: t.Settings.Recursion,
	}
}

// Divide splits a RenderTask's screen rectangle into up to cols*rows
// subtasks laid out left-to-right, top-to-bottom, where cols=ceil(sqrt(n))
// and rows=ceil(n/cols). The rightmost column and bottom row absorb any
// remainder pixels. All subtasks inherit the parent's RenderSettings.
func Divide(t RenderTask, n int) []RenderTask {
	if n < 1 {
		n = 1
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := int(math.Ceil(float64(n) / float64(cols)))

	baseW := t.Rect.W / cols
	baseH := t.Rect.H / rows
	remW := t.Rect.W % cols
	remH := t.Rect.H % rows

	tasks := make([]RenderTask, 0, cols*rows)
	y := t.Rect.Y
	for row := 0; row < rows; row++ {
		h := baseH
		if row == rows-1 {
			h += remH
		}
		x := t.Rect.X
		for col := 0; col < cols; col++ {
			w := baseW
			if col == cols-1 {
				w += remW
			}
			tasks = append(tasks, RenderTask{
				Rect:     Rect{X: x, Y: y, W: w, H: h},
				Settings: t.Settings,
			})
			x += w
		}
		y += h
	}
	return tasks
}
