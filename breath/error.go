// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package breath

import (
	"fmt"
	"time"
)

// ConfigError is returned by New for a non-positive observation
// interval, which would make the derivative computation divide by
// zero or flip its sign.
type ConfigError struct {
	Interval time.Duration
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("breath: observation interval %s is not positive", e.Interval)
}
