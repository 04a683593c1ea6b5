// Copyright 2026 The Sensors-EOH Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// sensors-eoh runs the environmental monitor: an AHT20 ambient
// sensor, an ADS1115 carrying the thermistor, supply and air quality
// channels, an HD44780 16x2 character LCD and a piezo buzzer.
//
// With -sim the hardware is replaced by simulated peripherals and the
// LCD by either an in-terminal panel or, with -http, an MJPEG stream
// of the rendered panel.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/devices/v3/aht20"
	"periph.io/x/devices/v3/hd44780"
	"periph.io/x/host/v3"

	"github.com/pumabryant/Sensors-EOH/buzzer"
	"github.com/pumabryant/Sensors-EOH/monitor"
	"github.com/pumabryant/Sensors-EOH/sim"
	"github.com/pumabryant/Sensors-EOH/statusscreen"
	"github.com/pumabryant/Sensors-EOH/termscreen"
	"github.com/pumabryant/Sensors-EOH/videotext"
)

func mainImpl() error {
	simulate := flag.Bool("sim", false, "use simulated peripherals instead of hardware")
	httpAddr := flag.String("http", "", "with -sim, serve the panel as an image stream on this address instead of the terminal")
	i2cBus := flag.String("bus", "", "I2C bus name, empty for the first available")
	lcdAddr := flag.Uint("lcd-addr", 0x20, "I2C address of the LCD backpack")
	buzzerPin := flag.String("buzzer", "GPIO18", "GPIO pin driving the buzzer")
	period := flag.Duration("period", monitor.DefaultOpts.SamplePeriod, "ambient sample period")
	windowSize := flag.Int("window", monitor.DefaultOpts.WindowSize, "samples averaged per block")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()
	if flag.NArg() != 0 {
		return fmt.Errorf("unexpected argument: %s", flag.Args())
	}

	cfg := zap.NewDevelopmentConfig()
	if !*verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return err
	}
	defer log.Sync()

	opts := monitor.DefaultOpts
	opts.SamplePeriod = *period
	opts.WindowSize = *windowSize

	var p monitor.Peripherals
	if *simulate {
		if p, err = simPeripherals(*httpAddr, log); err != nil {
			return err
		}
	} else {
		if p, err = hardwarePeripherals(*i2cBus, uint16(*lcdAddr), *buzzerPin); err != nil {
			return err
		}
	}

	dev, err := monitor.New(&opts, p, log)
	if err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("stopping")
		if err := dev.Halt(); err != nil {
			log.Error("halting monitor", zap.Error(err))
		}
	}()

	log.Info("monitor starting",
		zap.Duration("period", opts.SamplePeriod),
		zap.Int("window", opts.WindowSize),
		zap.Bool("sim", *simulate))
	return dev.Run()
}

// hardwarePeripherals opens the real device stack.
func hardwarePeripherals(busName string, lcdAddr uint16, buzzerPin string) (monitor.Peripherals, error) {
	var p monitor.Peripherals
	if _, err := host.Init(); err != nil {
		return p, err
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return p, err
	}

	ambient, err := aht20.NewI2C(bus, nil)
	if err != nil {
		return p, fmt.Errorf("opening ambient sensor: %w", err)
	}
	lcd, err := hd44780.NewAdafruitI2CBackpack(bus, lcdAddr, 2, 16)
	if err != nil {
		return p, fmt.Errorf("opening LCD: %w", err)
	}
	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		return p, fmt.Errorf("opening ADC: %w", err)
	}
	therm, err := adc.PinForChannel(ads1x15.Channel0, 5*physic.Volt, 10*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		return p, err
	}
	supply, err := adc.PinForChannel(ads1x15.Channel1, 5*physic.Volt, 10*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		return p, err
	}
	gas, err := adc.PinForChannel(ads1x15.Channel2, 5*physic.Volt, 10*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		return p, err
	}
	pin := gpioreg.ByName(buzzerPin)
	if pin == nil {
		return p, fmt.Errorf("no GPIO pin %q", buzzerPin)
	}

	screen, err := statusscreen.New(lcd)
	if err != nil {
		return p, err
	}
	bz, err := buzzer.New(pin)
	if err != nil {
		return p, err
	}
	return monitor.Peripherals{
		Ambient:    ambient,
		Thermistor: therm,
		Supply:     supply,
		AirQuality: gas,
		Screen:     screen,
		Buzzer:     bz,
	}, nil
}

// simPeripherals builds a full software rig: a breathing ambient
// signal, a healthy thermistor and battery, and a panel rendered to
// the terminal or served over HTTP.
func simPeripherals(httpAddr string, log *zap.Logger) (monitor.Peripherals, error) {
	var p monitor.Peripherals
	ambient, err := sim.NewEnv(nil)
	if err != nil {
		return p, err
	}

	var disp display.TextDisplay
	if httpAddr != "" {
		panel, err := videotext.New(nil)
		if err != nil {
			return p, err
		}
		go func() {
			log.Info("serving panel stream", zap.String("addr", httpAddr))
			if err := http.ListenAndServe(httpAddr, panel); err != nil {
				log.Error("panel stream server failed", zap.Error(err))
			}
		}()
		disp = panel
	} else {
		term, err := termscreen.New(nil)
		if err != nil {
			return p, err
		}
		disp = term
	}
	screen, err := statusscreen.New(disp)
	if err != nil {
		return p, err
	}
	bz, err := buzzer.New(&gpiotest.Pin{N: "buzzer"})
	if err != nil {
		return p, err
	}
	return monitor.Peripherals{
		Ambient:    ambient,
		Thermistor: &sim.Pin{N: "thermistor", Max: 1023, Ref: 5 * physic.Volt, Sample: sim.Const(512)},
		Supply:     &sim.Pin{N: "supply", Max: 1023, Ref: 5 * physic.Volt, Sample: sim.Const(1023)},
		AirQuality: &sim.Pin{N: "gas", Max: 1023, Ref: 5 * physic.Volt, Sample: sim.Const(400)},
		Screen:     screen,
		Buzzer:     bz,
	}, nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "sensors-eoh: %s.\n", err)
		os.Exit(1)
	}
}
