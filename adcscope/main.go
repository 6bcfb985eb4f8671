package main

import (
	"flag"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/adcstream/pkg/capture"
	"github.com/itohio/adcstream/pkg/config"
	"github.com/itohio/adcstream/pkg/device"
	"github.com/itohio/adcstream/pkg/sample"
	"github.com/itohio/adcstream/pkg/scope"
	"go.uber.org/zap"
)

func main() {
	var (
		portFlag           = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag         = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag           = flag.Bool("mock", false, "Use mocked device instead of serial port")
		thresholdFlag      = flag.Int("threshold", -1, "Trigger threshold in counts (overrides config)")
		averageSamplesFlag = flag.Int("average-samples", -1, "Number of samples to average (0 = disabled, overrides config)")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.String("path", *configFlag), zap.Error(err))
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *thresholdFlag >= 0 {
		if *thresholdFlag > 32767 {
			logger.Fatal("threshold out of range", zap.Int("threshold", *thresholdFlag))
		}
		cfg.Capture.Threshold = int16(*thresholdFlag)
	}
	if *averageSamplesFlag >= 0 {
		cfg.Capture.AverageSamples = *averageSamplesFlag
	}

	application := app.NewWithID("com.itohio.adcstream")

	window := application.NewWindow("ADC Scope")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		log:        logger,
		monitor:    capture.NewMonitor(&cfg.Capture, logger),
		window:     window,
		useMock:    *mockFlag,
	}

	toolbar := createToolbar(state)

	state.scopeWidget = scope.New(scope.DefaultMaxPoints)
	registerCallbacks(state)

	window.SetContent(container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		state.scopeWidget,
	))
	window.SetOnClosed(func() {
		closeAcquisitionChain(state.chain)
	})
	window.ShowAndRun()
}

// acquisitionChain tracks the components of the acquisition chain for graceful shutdown.
type acquisitionChain struct {
	device         device.Device
	samplesStream  <-chan sample.Sample
	monitorRoutine chan struct{} // Closed when the monitor goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	configPath  string
	log         *zap.Logger
	device      device.Device
	monitor     *capture.Monitor
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	connectBtn  *widget.Button
	saveBtn     *widget.Button
	stateLabel  *widget.Label
	useMock     bool
	chain       *acquisitionChain // Current chain (nil if not connected)

	// Throttling for scope updates
	lastUpdateTime time.Time
	lastState      capture.State
	updateMu       sync.Mutex
}

// createToolbar creates the application toolbar with Connect, Save and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	saveBtn := widget.NewButtonWithIcon("", theme.DocumentSaveIcon(), func() {
		handleSaveCapture(state)
	})
	saveBtn.Disable()
	state.saveBtn = saveBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	state.stateLabel = widget.NewLabel(capture.Armed.String())

	// Buttons on the left, trigger state on the right
	return container.NewBorder(nil, nil,
		container.NewHBox(connectBtn, saveBtn, settingsBtn),
		state.stateLabel,
	)
}

// registerCallbacks wires the monitor to the scope widget.
// Updates are throttled to ~60 FPS, trigger state changes always get through.
func registerCallbacks(state *appState) {
	const updateInterval = 16 * time.Millisecond

	state.monitor.OnUpdate(func(samples []sample.Sample, st capture.State) {
		state.updateMu.Lock()
		now := time.Now()
		changed := st != state.lastState
		if !changed && now.Sub(state.lastUpdateTime) < updateInterval {
			state.updateMu.Unlock()
			return
		}
		state.lastUpdateTime = now
		state.lastState = st
		state.updateMu.Unlock()

		threshold := state.monitor.Threshold()
		triggered := st != capture.Armed
		fyne.Do(func() {
			state.scopeWidget.UpdateData(samples, threshold, triggered)
			if changed {
				state.stateLabel.SetText(st.String())
			}
		})
	})

	state.monitor.OnCapture(func(samples []sample.Sample) {
		text := decodeCapture(state, samples)
		fyne.Do(func() {
			state.scopeWidget.SetStatus(text)
			state.saveBtn.Enable()
		})
	})
}

// closeAcquisitionChain gracefully closes the chain.
// Waits for the monitor goroutine to drain the converters.
func closeAcquisitionChain(chain *acquisitionChain) {
	if chain == nil {
		return
	}

	// Closing the device closes its samples channel, which drains the converters.
	if chain.device != nil {
		_ = chain.device.Close()
	}

	if chain.monitorRoutine != nil {
		<-chain.monitorRoutine
	}
}

// newDevice builds the configured sample source.
func newDevice(state *appState) device.Device {
	if state.useMock {
		return device.NewMock(&state.cfg.Mock, &state.cfg.Stream, state.log)
	}
	return device.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, state.cfg.Stream.BufferSize, state.log)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil {
		// A device whose reader died is released and connected again
		lost := !state.device.IsConnected()
		closeAcquisitionChain(state.chain)
		state.chain = nil
		state.device = nil
		state.connectBtn.SetIcon(theme.LoginIcon())
		state.log.Info("disconnected", zap.Bool("mock", state.useMock), zap.Bool("lost", lost))
		if !lost {
			return
		}
	}

	dev := newDevice(state)
	if err := dev.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to connect to mocked device: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = dev
	state.connectBtn.SetIcon(theme.LogoutIcon())
	state.log.Info("connected",
		zap.Bool("mock", state.useMock),
		zap.String("port", state.cfg.Serial.Port))

	// Reset monitor shutdown flag for the new chain
	state.monitor.ResetShutdown()

	// Base converter always used, averaging converter chained when enabled.
	bufSize := 5 * state.cfg.Stream.BufferSize
	samplesStream := sample.NewConverter(&state.cfg.ADC, bufSize)(dev.Samples())
	if state.cfg.Capture.AverageSamples > 0 {
		samplesStream = sample.NewAveragingConverter(state.cfg.Capture.AverageSamples, bufSize)(samplesStream)
	}

	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		state.monitor.ProcessSamples(samplesStream)
	}()

	state.chain = &acquisitionChain{
		device:         dev,
		samplesStream:  samplesStream,
		monitorRoutine: monitorDone,
	}
}

// reconnect restarts the chain if it is running, picking up new settings.
func reconnect(state *appState) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}
	handleConnect(state)
	handleConnect(state)
}
