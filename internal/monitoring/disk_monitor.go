package monitoring

import (
	"fmt"
	"time"

	"github.com/polinaozhigova/eqmon-be/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
)

// DiskMonitor periodically samples disk usage of the volume holding the
// upload directory and raises an alert event when space runs low.
type DiskMonitor struct {
	uploadDir     string
	eventSvc      services.EventServiceProvider
	ticker        *time.Ticker
	done          chan bool
	lastAlertTime time.Time
}

// NewDiskMonitor creates a new DiskMonitor watching uploadDir.
func NewDiskMonitor(uploadDir string, eventSvc services.EventServiceProvider) *DiskMonitor {
	return &DiskMonitor{
		uploadDir: uploadDir,
		eventSvc:  eventSvc,
		done:      make(chan bool),
	}
}

// Run starts the periodic sampling.
func (m *DiskMonitor) Run() {
	log.Info().Msg("Starting background disk monitor...")
	m.ticker = time.NewTicker(5 * time.Minute)
	defer m.ticker.Stop()

	// Sample once immediately on start
	m.sample()

	for {
		select {
		case <-m.done:
			log.Info().Msg("Stopping background disk monitor.")
			return
		case <-m.ticker.C:
			m.sample()
		}
	}
}

// Stop halts the periodic sampling.
func (m *DiskMonitor) Stop() {
	m.done <- true
}

func (m *DiskMonitor) sample() {
	usage, err := disk.Usage(m.uploadDir)
	if err != nil {
		log.Warn().Err(err).Str("path", m.uploadDir).Msg("DiskMonitor: Failed to read disk usage")
		return
	}

	log.Debug().
		Str("path", m.uploadDir).
		Uint64("free_bytes", usage.Free).
		Float64("used_percent", usage.UsedPercent).
		Msg("DiskMonitor: upload volume sampled")

	m.checkAndAlertForLowSpace(usage)
}

func (m *DiskMonitor) checkAndAlertForLowSpace(usage *disk.UsageStat) {
	const lowSpaceThreshold = 90.0
	const alertCooldown = 15 * time.Minute

	if usage.UsedPercent <= lowSpaceThreshold {
		return
	}
	if time.Since(m.lastAlertTime) < alertCooldown {
		// An alert was sent recently, do nothing.
		return
	}

	msg := fmt.Sprintf("Upload volume is %.1f%% full (%d bytes free).", usage.UsedPercent, usage.Free)
	if err := m.eventSvc.Record("system.alert.disk", "warn", msg, nil); err != nil {
		log.Error().Err(err).Msg("DiskMonitor: Failed to record low-space alert")
		return
	}
	m.lastAlertTime = time.Now()
}
