// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package window

import "fmt"

// FullError is returned by Append when the window already holds a
// complete block. It indicates a caller bug: the sampling loop must
// drain a full window before appending again.
type FullError struct {
	Capacity int
}

func (e *FullError) Error() string {
	return fmt.Sprintf("window: append to a full %d-sample window", e.Capacity)
}

// ShortWindowError is returned by DrainAndAverage when the window is
// not yet complete. Like FullError it indicates a caller bug, not a
// runtime condition.
type ShortWindowError struct {
	Have, Want int
}

func (e *ShortWindowError) Error() string {
	return fmt.Sprintf("window: drain of a partial window (%d of %d samples)", e.Have, e.Want)
}
