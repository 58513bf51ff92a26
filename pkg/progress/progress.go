/*
 *   Copyright 2023 Martin Proffitt <mproffitt@choclab.net>
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Reporter renders the progress of a chained derivation.
//
// Round has the signature of the derivation callback and advances the bar to
// the round that just completed.
type Reporter struct {
	bar   *progressbar.ProgressBar
	w     io.Writer
	start time.Time
	now   func() time.Time
}

// New creates a reporter for a chain of total rounds where the first offset
// rounds were already completed by an earlier run.
func New(w io.Writer, total, offset uint32) *Reporter {
	r := &Reporter{
		w:   w,
		now: time.Now,
	}
	r.bar = progressbar.NewOptions64(
		int64(total),
		progressbar.OptionSetDescription("Processing: "),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	if offset > 0 {
		_ = r.bar.Set64(int64(offset))
	}
	r.start = r.now()
	return r
}

// Round marks round as completed. The intermediary is not looked at.
func (r *Reporter) Round(round uint32, _ []byte) {
	_ = r.bar.Set64(int64(round) + 1)
}

// Finish completes the bar and returns how long the derivation took,
// rounded to the second
func (r *Reporter) Finish() time.Duration {
	_ = r.bar.Finish()
	fmt.Fprintln(r.w)
	return r.now().Sub(r.start).Round(time.Second)
}

// Abandon stops rendering without completing the bar
func (r *Reporter) Abandon() {
	_ = r.bar.Exit()
	fmt.Fprintln(r.w)
}
