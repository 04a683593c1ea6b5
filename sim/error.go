// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sim

// ReadError is the injected transient failure for Env. It stands in
// for the not-a-number readings a flaky real sensor produces.
type ReadError struct{}

func (e *ReadError) Error() string {
	return "sim: transient read failure"
}
