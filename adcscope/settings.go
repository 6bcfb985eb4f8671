package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/adcstream/pkg/device"
	"github.com/itohio/adcstream/pkg/stream"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createCaptureTab(state),
		createDecodeTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// saveConfig persists the configuration and reports failures.
func saveConfig(state *appState) bool {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return false
	}
	return true
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := device.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err != nil {
		state.log.Sugar().Warnw("failed to list serial ports", "error", err)
	}
	for _, port := range ports {
		displayName := port.Name
		if port.Description != "" && port.Description != port.Name {
			displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
		}
		portOptions = append(portOptions, displayName)
		portMap[displayName] = port.Name
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	powerSelect := widget.NewSelect([]string{stream.Operation5V.String(), stream.Operation3V.String()}, nil)
	powerSelect.SetSelected(state.cfg.Stream.PowerMode)

	intervalEntry := widget.NewEntry()
	intervalEntry.SetText(state.cfg.Stream.Interval.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
			{Text: "Device Power Mode", Widget: powerSelect},
			{Text: "Device Interval", Widget: intervalEntry},
		},
		OnSubmit: func() {
			changed := false
			if portSelect.Selected != "" {
				selectedPort := portMap[portSelect.Selected]
				if selectedPort == "" {
					selectedPort = portSelect.Selected
				}
				changed = state.cfg.Serial.Port != selectedPort
				state.cfg.Serial.Port = selectedPort
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				changed = changed || state.cfg.Serial.BaudRate != baud
				state.cfg.Serial.BaudRate = baud
			}
			// The mock runs its own sampler, so it picks up loop changes too
			if _, ok := stream.ParsePowerMode(powerSelect.Selected); ok {
				loopChanged := state.cfg.Stream.PowerMode != powerSelect.Selected
				changed = changed || (state.useMock && loopChanged)
				state.cfg.Stream.PowerMode = powerSelect.Selected
			}
			if iv, err := time.ParseDuration(intervalEntry.Text); err == nil && iv > 0 {
				changed = changed || (state.useMock && state.cfg.Stream.Interval != iv)
				state.cfg.Stream.Interval = iv
			}
			if !saveConfig(state) {
				return
			}

			if changed {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createCaptureTab creates the Capture configuration tab.
func createCaptureTab(state *appState) *container.TabItem {
	thresholdEntry := widget.NewEntry()
	thresholdEntry.SetText(strconv.Itoa(int(state.cfg.Capture.Threshold)))

	belowLimitEntry := widget.NewEntry()
	belowLimitEntry.SetText(strconv.Itoa(state.cfg.Capture.BelowLimit))

	windowEntry := widget.NewEntry()
	windowEntry.SetText(strconv.Itoa(state.cfg.Capture.Window))

	averageSamplesEntry := widget.NewEntry()
	averageSamplesEntry.SetText(strconv.Itoa(state.cfg.Capture.AverageSamples))

	vrefEntry := widget.NewEntry()
	vrefEntry.SetText(fmt.Sprintf("%.2f", state.cfg.ADC.VRef))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Threshold (counts)", Widget: thresholdEntry},
			{Text: "Below Limit (samples)", Widget: belowLimitEntry},
			{Text: "Window (samples)", Widget: windowEntry},
			{Text: "Average Samples (0=disabled)", Widget: averageSamplesEntry},
			{Text: "VRef (V)", Widget: vrefEntry},
		},
		OnSubmit: func() {
			prev := state.cfg.Capture
			if th, err := strconv.ParseInt(thresholdEntry.Text, 10, 16); err == nil {
				state.cfg.Capture.Threshold = int16(th)
			}
			if bl, err := strconv.Atoi(belowLimitEntry.Text); err == nil && bl > 0 {
				state.cfg.Capture.BelowLimit = bl
			}
			if w, err := strconv.Atoi(windowEntry.Text); err == nil && w > 0 {
				state.cfg.Capture.Window = w
			}
			avgChanged := false
			if avg, err := strconv.Atoi(averageSamplesEntry.Text); err == nil && avg >= 0 {
				avgChanged = state.cfg.Capture.AverageSamples != avg
				state.cfg.Capture.AverageSamples = avg
			}
			if vref, err := strconv.ParseFloat(vrefEntry.Text, 64); err == nil && vref > 0 {
				state.cfg.ADC.VRef = vref
			}
			if !saveConfig(state) {
				return
			}

			// A new level alone keeps the live window on screen
			cur := state.cfg.Capture
			switch {
			case cur.BelowLimit != prev.BelowLimit || cur.Window != prev.Window:
				state.monitor.Reconfigure(&state.cfg.Capture)
			case cur.Threshold != prev.Threshold:
				state.monitor.SetThreshold(cur.Threshold)
			}
			if avgChanged {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Capture", form)
}

// createDecodeTab creates the Manchester decoding configuration tab.
func createDecodeTab(state *appState) *container.TabItem {
	sampleRateEntry := widget.NewEntry()
	sampleRateEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Manchester.SampleRate))

	marginEntry := widget.NewEntry()
	marginEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Manchester.EdgeMargin))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Sample Rate (Hz)", Widget: sampleRateEntry},
			{Text: "Edge Margin (fraction of bit)", Widget: marginEntry},
		},
		OnSubmit: func() {
			if sr, err := strconv.ParseFloat(sampleRateEntry.Text, 64); err == nil && sr >= 0 {
				state.cfg.Manchester.SampleRate = sr
			}
			if m, err := strconv.ParseFloat(marginEntry.Text, 64); err == nil && m >= 0 && m < 0.5 {
				state.cfg.Manchester.EdgeMargin = m
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Decode", form)
}

// createMockTab creates the Mock device configuration tab.
func createMockTab(state *appState) *container.TabItem {
	messageEntry := widget.NewEntry()
	messageEntry.SetText(state.cfg.Mock.Message)

	bitSamplesEntry := widget.NewEntry()
	bitSamplesEntry.SetText(strconv.Itoa(state.cfg.Mock.BitSamples))

	idleCountsEntry := widget.NewEntry()
	idleCountsEntry.SetText(strconv.Itoa(int(state.cfg.Mock.IdleCounts)))

	highCountsEntry := widget.NewEntry()
	highCountsEntry.SetText(strconv.Itoa(int(state.cfg.Mock.HighCounts)))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(strconv.Itoa(int(state.cfg.Mock.Noise)))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Message", Widget: messageEntry},
			{Text: "Samples per Half Bit", Widget: bitSamplesEntry},
			{Text: "Idle Level (counts)", Widget: idleCountsEntry},
			{Text: "High Level (counts)", Widget: highCountsEntry},
			{Text: "Noise (counts)", Widget: noiseEntry},
		},
		OnSubmit: func() {
			state.cfg.Mock.Message = messageEntry.Text
			if bs, err := strconv.Atoi(bitSamplesEntry.Text); err == nil && bs > 0 {
				state.cfg.Mock.BitSamples = bs
			}
			if v, err := strconv.ParseInt(idleCountsEntry.Text, 10, 16); err == nil {
				state.cfg.Mock.IdleCounts = int16(v)
			}
			if v, err := strconv.ParseInt(highCountsEntry.Text, 10, 16); err == nil {
				state.cfg.Mock.HighCounts = int16(v)
			}
			if v, err := strconv.ParseInt(noiseEntry.Text, 10, 16); err == nil && v >= 0 {
				state.cfg.Mock.Noise = int16(v)
			}
			if !saveConfig(state) {
				return
			}
			if state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
