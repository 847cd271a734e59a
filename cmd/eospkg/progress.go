package main

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/meigma/eospkg"
)

// byteProgress renders ProgressEvents for one stage as a byte progress bar.
// The bar is created on the first matching event because the total is not
// known until then.
type byteProgress struct {
	w     io.Writer
	stage eospkg.ProgressStage
	desc  string

	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func newByteProgress(w io.Writer, stage eospkg.ProgressStage, desc string) *byteProgress {
	return &byteProgress{w: w, stage: stage, desc: desc}
}

func (p *byteProgress) update(ev eospkg.ProgressEvent) {
	if ev.Stage != p.stage {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		p.bar = progressbar.NewOptions64(int64(ev.BytesTotal), //nolint:gosec // package sizes fit in u32
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription(p.desc),
			progressbar.OptionShowBytes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set64(int64(ev.BytesDone)) //nolint:errcheck,gosec // rendering only
}

// finish completes the bar if one was started.
func (p *byteProgress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish() //nolint:errcheck // rendering only
	}
}
