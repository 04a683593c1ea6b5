// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sensors is a container for the Sensors-EOH environmental
// monitor: a sampling pipeline that averages fixed-size windows of
// temperature readings, detects breath-like oscillations in the
// trend, converts a thermistor ADC channel through the Steinhart-Hart
// equation, and raises display/buzzer alerts on out-of-range
// temperature or low supply voltage.
//
// The hardware-facing contracts are the periph.io conn abstractions:
// physic.SenseEnv for the ambient sensor, analog.PinADC for the raw
// channels, display.TextDisplay for the panel and gpio.PinOut for the
// buzzer. The monitor package drives the loop; cmd/sensors-eoh wires
// real or simulated peripherals.
package sensors
