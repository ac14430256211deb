package job

import "testing"

func TestDivideFourWaySplit(t *testing.T) {
	task := RenderTask{Rect: Rect{X: 0, Y: 0, W: 100, H: 100}}
	subs := Divide(task, 4)
	if len(subs) != 4 {
		t.Fatalf("len(subs) = %d, want 4", len(subs))
	}
	wantOrigins := []Rect{{0, 0, 50, 50}, {50, 0, 50, 50}, {0, 50, 50, 50}, {50, 50, 50, 50}}
	for i, want := range wantOrigins {
		if subs[i].Rect != want {
			t.Errorf("subs[%d] = %+v, want %+v", i, subs[i].Rect, want)
		}
	}
}

func TestDivideCoversAreaExactlyAndDisjoint(t *testing.T) {
	task := RenderTask{Rect: Rect{X: 0, Y: 0, W: 10, H: 10}}
	for _, n := range []int{1, 2, 3, 4, 5, 7, 9} {
		subs := Divide(task, n)

		covered := make(map[[2]int]bool)
		totalArea := 0
		for _, s := range subs {
			totalArea += s.Rect.Area()
			for x := s.Rect.X; x < s.Rect.X+s.Rect.W; x++ {
				for y := s.Rect.Y; y < s.Rect.Y+s.Rect.H; y++ {
					key := [2]int{x, y}
					if covered[key] {
						t.Fatalf("n=%d: pixel %v covered by more than one subtask", n, key)
					}
					covered[key] = true
				}
			}
		}
		if totalArea != task.Rect.Area() {
			t.Fatalf("n=%d: total area = %d, want %d", n, totalArea, task.Rect.Area())
		}
	}
}

func TestDivideThreeYieldsTwoByTwoGrid(t *testing.T) {
	task := RenderTask{Rect: Rect{X: 0, Y: 0, W: 10, H: 10}}
	subs := Divide(task, 3)
	if len(subs) != 4 {
		t.Fatalf("len(subs) = %d, want 4 (2x2 grid)", len(subs))
	}
}

func TestToJobScalesToCameraResolution(t *testing.T) {
	task := RenderTask{
		Rect:     Rect{X: 0, Y: 0, W: 50, H: 50},
		Settings: RenderSettings{ResolutionW: 96, ResolutionH: 54, Samples: 2, Recursion: 2},
	}
	j := task.ToJob(100, 100)
	if err := j.Validate(); err != nil {
		t.Fatalf("ToJob() produced invalid job: %v", err)
	}
	if j.CameraW != 96 || j.CameraH != 54 {
		t.Fatalf("camera resolution = %dx%d, want 96x54", j.CameraW, j.CameraH)
	}
}
