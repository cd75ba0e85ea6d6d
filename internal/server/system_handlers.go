package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/megasena/internal/database"
	"github.com/aristath/megasena/internal/di"
	"github.com/aristath/megasena/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers serves process, database and dataset status
type SystemHandlers struct {
	log       zerolog.Logger
	container *di.Container
	jobs      map[string]scheduler.Job
	startedAt time.Time
}

// NewSystemHandlers creates new system handlers; jobs may be nil
func NewSystemHandlers(log zerolog.Logger, container *di.Container, jobs *di.JobInstances) *SystemHandlers {
	h := &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		container: container,
		jobs:      make(map[string]scheduler.Job),
		startedAt: time.Now(),
	}

	if jobs != nil {
		for _, job := range []scheduler.Job{jobs.ReloadDataset, jobs.CheckDatabases, jobs.CheckWALCheckpoints} {
			if job != nil {
				h.jobs[job.Name()] = job
			}
		}
	}

	return h
}

// DatasetStatus describes the loaded draw history
type DatasetStatus struct {
	Available     bool   `json:"available"`
	Draws         int    `json:"draws"`
	Version       uint64 `json:"version,omitempty"`
	LatestContest int    `json:"latest_contest,omitempty"`
	LoadedAt      string `json:"loaded_at,omitempty"`
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status        string                     `json:"status"` // "healthy" or "degraded"
	UptimeSeconds int64                      `json:"uptime_seconds"`
	CPUPercent    float64                    `json:"cpu_percent"`
	MemoryPercent float64                    `json:"memory_percent"`
	Goroutines    int                        `json:"goroutines"`
	Dataset       DatasetStatus              `json:"dataset"`
	Databases     map[string]*database.Stats `json:"databases"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.getSystemStats()
	response := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Goroutines:    runtime.NumGoroutine(),
		Dataset:       h.datasetStatus(),
		Databases:     make(map[string]*database.Stats),
	}

	if !response.Dataset.Available {
		response.Status = "degraded"
	}

	for name, db := range h.container.Databases() {
		if db == nil {
			continue
		}
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to get database stats")
			response.Status = "degraded"
			continue
		}
		response.Databases[name] = stats
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleRunJob handles POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok {
		http.Error(w, "Unknown job", http.StatusNotFound)
		return
	}

	start := time.Now()
	var err error
	if h.container.Scheduler != nil {
		err = h.container.Scheduler.RunNow(job)
	} else {
		err = job.Run()
	}

	response := map[string]interface{}{
		"job":         name,
		"status":      "success",
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		response["status"] = "error"
		response["message"] = err.Error()
	}

	h.writeJSON(w, http.StatusOK, response)
}

func (h *SystemHandlers) datasetStatus() DatasetStatus {
	if h.container.HistoryService == nil {
		return DatasetStatus{}
	}
	store, err := h.container.HistoryService.Current()
	if err != nil {
		return DatasetStatus{}
	}

	status := DatasetStatus{
		Available: true,
		Draws:     store.Len(),
		Version:   store.Version(),
		LoadedAt:  h.container.HistoryService.LoadedAt().Format(time.RFC3339),
	}
	if latest, ok := store.Latest(); ok {
		status.LatestContest = latest.Contest
	}
	return status
}

// getSystemStats calculates CPU and RAM usage percentages.
// A 100ms sample keeps the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
